package plan

import "errors"

var ErrInvalidCatalog = errors.New("plan: invalid catalog")
