package repo_errors

import "errors"

var (
	// ErrNotFound - no row matched the identifier.
	ErrNotFound = errors.New("not found")
	// ErrUniqueViolation - an insert hit a unique constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrStaleState - a status-guarded update matched zero rows; the entity
	// changed state between the caller's read and this write.
	ErrStaleState = errors.New("stale entity state")
)
