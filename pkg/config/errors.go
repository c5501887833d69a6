package config

import "errors"

var (
	ErrNilConfig          = errors.New("config: nil config pointer")
	ErrFailedToLoadConfig = errors.New("config: failed to load config")
)
