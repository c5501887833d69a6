package user

import "errors"

var (
	ErrMissingFields      = errors.New("user: all fields are required")
	ErrEmailTaken         = errors.New("user: user already exists")
	ErrInvalidCredentials = errors.New("user: invalid email or password")
	ErrNotFound           = errors.New("user: not found")
)
