// Package inmem implements filelock.Service with in-process semaphores.
// It provides the same contract as the cross-process backends for tests
// and single-process deployments.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/asavras/filelock"
)

var (
	_ filelock.Service = (*Service)(nil)
	_ filelock.Locker  = (*locker)(nil)
)

// Service implements filelock.Service using keyed semaphores.
type Service struct {
	config Config

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// lockEntry is a one-slot semaphore shared by all lockers of one key.
// Entries are refcounted by waiters and removed when the last one leaves.
type lockEntry struct {
	sem     chan struct{}
	waiters int
}

// New creates a new in-memory lock service.
func New(options ...Option) *Service {
	config := Config{}
	for _, opt := range options {
		opt.Apply(&config)
	}

	return &Service{
		config: config,
		locks:  make(map[string]*lockEntry),
	}
}

// NewLock creates a new lock with the given name.
func (s *Service) NewLock(name string) filelock.Locker {
	return &locker{
		service: s,
		key:     name,
	}
}

func (s *Service) getEntry(key string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		s.locks[key] = entry
	}
	entry.waiters++
	return entry
}

func (s *Service) releaseEntry(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.locks[key]
	if !ok {
		return
	}
	entry.waiters--
	if entry.waiters == 0 {
		delete(s.locks, key)
	}
}

type locker struct {
	service *Service
	key     string

	mu     sync.Mutex
	entry  *lockEntry
	locked bool
}

// Lock acquires the lock, blocking until it is available, the configured
// timeout elapses, or ctx is cancelled.
func (l *locker) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return nil
	}

	entry := l.service.getEntry(l.key)

	var timeoutC <-chan time.Time
	if timeout := l.service.config.Timeout; timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case entry.sem <- struct{}{}:
		l.entry = entry
		l.locked = true
		return nil
	case <-ctx.Done():
		l.service.releaseEntry(l.key)
		return ctx.Err()
	case <-timeoutC:
		l.service.releaseEntry(l.key)
		return &filelock.TimeoutError{Key: l.key, Duration: l.service.config.Timeout}
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *locker) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	entry := l.service.getEntry(l.key)

	select {
	case entry.sem <- struct{}{}:
		l.entry = entry
		l.locked = true
		return true, nil
	default:
		l.service.releaseEntry(l.key)
		return false, nil
	}
}

// Unlock releases the lock. Calling Unlock when the lock is not held is
// a no-op.
func (l *locker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}

	<-l.entry.sem
	l.service.releaseEntry(l.key)
	l.entry = nil
	l.locked = false
	return nil
}
