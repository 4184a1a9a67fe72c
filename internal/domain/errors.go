package domain

import "errors"

// Sentinel errors shared across services and repositories. Callers inspect
// these with errors.Is; they are never collapsed into a generic failure
// because the API must distinguish "already approved" from "not found" from
// "not authorized".
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrPartialFailure reports a dual write that committed on one aggregate
	// but could not be brought to convergence on the other. The reconciler
	// repairs the divergence on its next pass.
	ErrPartialFailure = errors.New("partial write failure")
)
