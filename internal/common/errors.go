package common

import (
	"errors"
	"fmt"
)

// Operation outcome taxonomy. Handlers map these onto transport status codes;
// services return them as-is and never translate to HTTP themselves.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrNotImplemented  = errors.New("not implemented")
)

// InvalidTransitionError reports a rejected status transition. It carries the
// attempted and current status so callers can tell a benign retry race
// (current already equals the target) from a real error.
type InvalidTransitionError struct {
	Entity    string
	Attempted string
	Current   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %s: attempted %s, current status %s", e.Entity, e.Attempted, e.Current)
}

// IsInvalidTransition unwraps err into an InvalidTransitionError if it is one.
func IsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}

// StoreError wraps an underlying persistence failure. The core never retries
// these; they surface as generic failures.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore tags a repository error with the failing operation.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
