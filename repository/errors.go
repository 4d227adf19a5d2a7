package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when a sign-up reuses an existing email.
	ErrEmailTaken = errors.New("email already registered")
)
