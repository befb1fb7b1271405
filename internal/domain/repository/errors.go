package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a users insert hits the email
	// unique constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
