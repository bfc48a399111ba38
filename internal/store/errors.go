package store

import "errors"

var (
	// ErrNotFound is returned when no cached result exists for a key
	ErrNotFound = errors.New("cached result not found")
	// ErrMissingUserID is returned when a history operation has no user
	ErrMissingUserID = errors.New("user ID is required")
	// ErrNilResult is returned when attempting to cache a nil result
	ErrNilResult = errors.New("result is required")
	// ErrMissingDSN is returned when a database backend has no connection string or path
	ErrMissingDSN = errors.New("database connection string is required")
)
