// Package failure classifies stage and service errors so retry decisions can
// be made without string matching.
//
// An error is transient when any error in its chain implements
//
//	interface{ Transient() bool }
//
// and reports true. [Transient] wraps an arbitrary error with that marker.
package failure

import "errors"

// ErrResourceExhausted marks a computation that ran out of a bounded resource
// (memory budget, worker slots). It is always transient.
var ErrResourceExhausted = Transient(errors.New("resource exhausted"))

type transientError struct {
	err error
}

func (transient *transientError) Error() string   { return transient.err.Error() }
func (transient *transientError) Unwrap() error   { return transient.err }
func (transient *transientError) Transient() bool { return true }

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether any error in err's chain is marked transient.
func IsTransient(err error) bool {
	for err != nil {
		if marker, ok := err.(interface{ Transient() bool }); ok && marker.Transient() {
			return true
		}
		switch unwrapped := err.(type) {
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		case interface{ Unwrap() []error }:
			for _, joined := range unwrapped.Unwrap() {
				if IsTransient(joined) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}
