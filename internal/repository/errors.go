package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates an insert violated a uniqueness constraint.
	ErrDuplicate = errors.New("repository: duplicate key")
)

// DuplicateError wraps ErrDuplicate with the violated constraint name so
// callers can translate storage-level races into field-level conflicts.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("repository: duplicate key on %s", e.Constraint)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
