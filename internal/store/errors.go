package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist in a collection.
	ErrNotFound = errors.New("record not found")

	// ErrNotSupported is returned for operations a collection deliberately
	// refuses, such as deleting an append-only observation.
	ErrNotSupported = errors.New("operation not supported")
)
