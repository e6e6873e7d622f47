// Package filelock provides cross-process advisory locks behind a common
// interface. The file backend encodes lock state as the existence of a
// marker file on a shared filesystem; alternative backends keep the same
// contract over in-process memory, PostgreSQL advisory locks, or Redis.
package filelock

import "context"

// Locker represents an advisory lock that can be acquired and released.
//
// A Locker instance is intended for use by a single goroutine at a time.
// Callers that need to share one instance across goroutines must add their
// own synchronization, or create one instance per goroutine.
type Locker interface {
	// Lock acquires the lock, blocking until it is available, the backend's
	// configured timeout elapses, or ctx is cancelled. Calling Lock while
	// this instance already holds the lock is a no-op; a single Unlock
	// still releases it.
	Lock(ctx context.Context) error

	// TryLock attempts to acquire the lock with a single attempt.
	// Returns true if the lock was acquired, false if it is currently held
	// elsewhere. Errors are reserved for environment faults, not contention.
	TryLock(ctx context.Context) (bool, error)

	// Unlock releases the lock. Calling Unlock when the lock is not held by
	// this instance is a no-op.
	Unlock(ctx context.Context) error
}

// Service provides methods to create locks.
type Service interface {
	// NewLock creates a new lock with the given name. It performs no I/O
	// and never fails; resources are only touched by Lock and Unlock.
	NewLock(name string) Locker
}

// Do acquires l, runs fn, and releases l on every exit path, including
// error propagation out of fn.
func Do(ctx context.Context, l Locker, fn func(ctx context.Context) error) error {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		_ = l.Unlock(ctx)
	}()

	return fn(ctx)
}
