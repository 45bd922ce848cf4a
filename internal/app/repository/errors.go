package repository

import "errors"

var (
	// ErrStorageUnavailable signals that no backing store was configured.
	// Reads degrade to empty results; writes return this error.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrZoneNotFound signals that the requested ad zone does not exist.
	ErrZoneNotFound = errors.New("ad zone not found")

	// ErrZoneExists signals a duplicate external zone identifier.
	ErrZoneExists = errors.New("ad zone already exists")

	// ErrSessionNotFound signals that no active session matched.
	ErrSessionNotFound = errors.New("no active session")
)
