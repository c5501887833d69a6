package cookie

import "errors"

var ErrNotFound = errors.New("cookie: not found")
