// Package common defines shared constants and sentinel errors used across
// the shopsync client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Transport / boundary errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation error")

	// Storage errors.
	ErrNotFound = errors.New("not found")
)
