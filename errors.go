package filelock

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError indicates that acquisition was retried until the configured
// timeout elapsed without the lock becoming available. It names the
// contended lock so operators can identify the resource; for the file
// backend the key is the lock file path.
type TimeoutError struct {
	// Key identifies the contended lock.
	Key string
	// Duration is the configured acquisition timeout that elapsed.
	Duration time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lock %q: acquisition timed out after %s", e.Key, e.Duration)
}

// Timeout reports that this error represents a timeout.
func (e *TimeoutError) Timeout() bool {
	return true
}

// Is reports whether target is a TimeoutError, so that
// errors.Is(err, &TimeoutError{}) matches regardless of field values.
func (e *TimeoutError) Is(target error) bool {
	_, ok := target.(*TimeoutError)
	return ok
}

// IsTimeout checks if err is a lock acquisition timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, &TimeoutError{})
}

// AsTimeout returns err as a TimeoutError, or nil and false if it is not one.
func AsTimeout(err error) (terr *TimeoutError, ok bool) {
	if errors.As(err, &terr) {
		return terr, true
	}

	return nil, false
}

// IOError indicates a backend fault unrelated to contention: a missing
// folder, a disk error, a broken connection. It is surfaced immediately and
// never retried.
type IOError struct {
	// Op is the operation that failed, e.g. "create" or "remove".
	Op string
	// Key identifies the lock the operation was performed for.
	Key string
	// Err is the underlying fault.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("lock %q: %s: %v", e.Key, e.Op, e.Err)
}

// Unwrap returns the underlying fault.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an IOError.
func (e *IOError) Is(target error) bool {
	_, ok := target.(*IOError)
	return ok
}

// IsIOError checks if err is a backend fault.
func IsIOError(err error) bool {
	return errors.Is(err, &IOError{})
}

// AsIOError returns err as an IOError, or nil and false if it is not one.
func AsIOError(err error) (ierr *IOError, ok bool) {
	if errors.As(err, &ierr) {
		return ierr, true
	}

	return nil, false
}
