package domain

import "errors"

// Error kinds. Services wrap one of these with a human-readable message
// (fmt.Errorf("%w: ...", ErrX)) so callers can match the kind with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
)
