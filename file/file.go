// Package file implements filelock.Service with marker files on a shared
// filesystem. A lock named "job" in directory dir is the file dir/job.lock:
// its existence is the lock state, observable by every process that can see
// the directory. Mutual exclusion comes from the atomicity of exclusive
// file creation (O_CREAT|O_EXCL); the file's contents are irrelevant and
// nothing is written into it.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/asavras/filelock"
	"github.com/go-logr/logr"
)

var (
	_ filelock.Service = (*Service)(nil)
	_ filelock.Locker  = (*locker)(nil)
)

// Service implements filelock.Service using marker files in one directory.
// The directory must exist and be writable by the caller; it is not created.
type Service struct {
	dir    string
	config Config
}

// New creates a new file lock service rooted at dir. It performs no I/O.
func New(dir string, options ...Option) *Service {
	config := Config{
		Timeout:    DefaultTimeout,
		RetryDelay: DefaultRetryDelay,
		Logger:     logr.Discard(),
	}
	for _, opt := range options {
		opt.Apply(&config)
	}

	return &Service{
		dir:    dir,
		config: config,
	}
}

// NewLock creates a new lock backed by dir/name.lock. The name must be
// filesystem-safe; it is not sanitized here.
func (s *Service) NewLock(name string) filelock.Locker {
	return &locker{
		service: s,
		path:    filepath.Join(s.dir, name+".lock"),
	}
}

type locker struct {
	service *Service
	path    string

	mu     sync.Mutex
	file   *os.File
	locked bool
}

// Lock acquires the lock, polling until it is available, the configured
// timeout elapses, or ctx is cancelled. A timeout surfaces as a
// *filelock.TimeoutError naming the lock file path.
func (l *locker) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return nil
	}

	config := l.service.config
	err := filelock.Wait(ctx, filelock.WaitConfig{
		Key:        l.path,
		Timeout:    config.Timeout,
		RetryDelay: config.RetryDelay,
		Jitter:     config.Jitter,
	}, l.tryCreate)
	if err != nil {
		return err
	}

	config.Logger.V(1).Info("lock acquired", "path", l.path, "pid", os.Getpid())
	return nil
}

// TryLock attempts a single exclusive creation of the lock file.
func (l *locker) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	acquired, err := l.tryCreate(ctx)
	if err != nil || !acquired {
		return false, err
	}

	l.service.config.Logger.V(1).Info("lock acquired", "path", l.path, "pid", os.Getpid())
	return true, nil
}

// tryCreate performs one atomic create-exclusive attempt. Contention is
// reported as (false, nil); anything else is an environment fault.
func (l *locker) tryCreate(context.Context) (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	switch {
	case err == nil:
		l.file = f
		l.locked = true
		return true, nil
	case errors.Is(err, fs.ErrExist):
		return false, nil
	case errors.Is(err, fs.ErrPermission):
		// Some platforms report a permission denial while another holder
		// owns the file; treated as contention, same as the file existing.
		return false, nil
	default:
		return false, &filelock.IOError{Op: "create", Key: l.path, Err: err}
	}
}

// Unlock closes the handle and deletes the lock file, allowing any polling
// waiter to succeed on its next attempt. Calling Unlock when the lock is
// not held is a no-op.
func (l *locker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}

	if l.file != nil {
		// Close errors are irrelevant: the file carries no data.
		_ = l.file.Close()
		l.file = nil
	}
	// The held flag clears first so a second Unlock stays a no-op even if
	// the delete fails.
	l.locked = false

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &filelock.IOError{Op: "remove", Key: l.path, Err: err}
	}

	l.service.config.Logger.V(1).Info("lock released", "path", l.path, "pid", os.Getpid())
	return nil
}
