package models

import "errors"

// Error taxonomy shared by repositories, services and the HTTP layer.
// Anything that does not wrap one of these is treated as internal.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
)
