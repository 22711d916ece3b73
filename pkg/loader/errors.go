package loader

import "fmt"

// ValidationError marks a row or natural key failing a required-field or
// type check. Affected rows are skipped and counted, never fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// ResolutionError marks a natural key that could not be resolved to a
// dimension row.
type ResolutionError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// PersistenceError marks a failed batch write. The batch transaction has
// been rolled back; the error aborts the current file's load.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
