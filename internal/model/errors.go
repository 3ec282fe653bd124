package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by stores when a unique index rejects a write.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuery is returned by stores for a query with a negative window.
	ErrInvalidQuery = errors.New("invalid query")
)
