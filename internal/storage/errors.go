package storage

import "errors"

// Storage errors for upsert stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// Callers must distinguish this from transport/query failures: a store
	// failure is never reported as ErrNotFound.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
