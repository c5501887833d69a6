package auth

import "errors"

var (
	ErrNoToken      = errors.New("auth: no token")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)
