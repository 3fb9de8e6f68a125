package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingImage           = errors.New("missing image")
	ErrConflictingContainer   = errors.New("conflicting container")
	ErrCredentialsUnavailable = errors.New("credentials unavailable")
	ErrRemovalFailure         = errors.New("removal failure")
	ErrImageNotFound          = errors.New("image not found")
)

// FatalError aborts the current action before any further mutation.
// Interactive callers exit the process; other callers may recover.
type FatalError struct {
	Kind   error
	Reason string
	Err    error
}

// Fatal builds a FatalError of the given kind.
func Fatal(kind error, reason string, err error) *FatalError {
	return &FatalError{Kind: kind, Reason: reason, Err: err}
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *FatalError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
