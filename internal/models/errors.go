package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a lifecycle event is applied to
	// a claim, listing, or delivery that is not in the required state. No
	// writes are performed.
	ErrInvalidTransition = errors.New("invalid transition for current status")

	// ErrListingUnavailable is returned when a claim races another claimant
	// and loses, or targets a listing that is no longer UNCLAIMED.
	ErrListingUnavailable = errors.New("listing is no longer available")

	// ErrNotFound is returned when a referenced document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrForbidden is returned when the caller's role or identity does not
	// permit the requested operation
	ErrForbidden = errors.New("operation not permitted for caller")
)

// TransientError wraps a network or collaborator failure. Callers may retry
// at their discretion; it is never a precondition violation.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
