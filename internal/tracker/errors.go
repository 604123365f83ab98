package tracker

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups of unknown clients. Deletes of absent
// ids are no-ops and never return it.
var ErrNotFound = errors.New("not found")

// ValidationError rejects an operation before any state changes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError means the in-memory change was applied but writing the
// blob failed. Memory stays the source of truth for the rest of the process.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err only carries persistence warnings.
func IsPersistence(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr)
}
