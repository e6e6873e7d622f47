// Package pgx implements filelock.Service using PostgreSQL advisory locks.
// A lock pins one pool connection while held; the advisory lock is session
// scoped, so losing the connection releases it on the server side.
package pgx

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/asavras/filelock"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ filelock.Service = (*Service)(nil)
	_ filelock.Locker  = (*locker)(nil)
)

// Service implements filelock.Service using PostgreSQL advisory locks.
type Service struct {
	config Config
	pool   *pgxpool.Pool
}

// New creates a new lock service on top of a pgx pool.
func New(pool *pgxpool.Pool, options ...Option) *Service {
	config := Config{
		RetryDelay: DefaultRetryDelay,
	}
	for _, opt := range options {
		opt.Apply(&config)
	}

	return &Service{
		config: config,
		pool:   pool,
	}
}

// NewLock creates a new lock with the given name.
func (s *Service) NewLock(name string) filelock.Locker {
	return &locker{
		service: s,
		name:    name,
		key:     hashKey(name),
	}
}

// hashKey converts a string name to int32 using FNV-1a hash. The raw name
// is kept for error reporting.
func hashKey(key string) int32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int32(h.Sum32())
}

type locker struct {
	service *Service
	name    string
	key     int32

	mu     sync.Mutex
	conn   *pgxpool.Conn
	locked bool
}

// Lock acquires the advisory lock. With a configured timeout it polls
// pg_try_advisory_lock until acquired or the timeout elapses; otherwise it
// issues a single blocking pg_advisory_lock bounded only by ctx.
func (l *locker) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return nil
	}

	if err := l.acquireConn(ctx); err != nil {
		return err
	}

	config := l.service.config
	if config.Timeout <= 0 {
		_, err := l.conn.Exec(ctx, "SELECT pg_advisory_lock($1, $2)", config.Namespace, l.key)
		if err != nil {
			l.releaseConn()
			return &filelock.IOError{Op: "acquire", Key: l.name, Err: err}
		}

		l.locked = true
		return nil
	}

	err := filelock.Wait(ctx, filelock.WaitConfig{
		Key:        l.name,
		Timeout:    config.Timeout,
		RetryDelay: config.RetryDelay,
	}, l.tryAcquire)
	if err != nil {
		l.releaseConn()
		return err
	}

	l.locked = true
	return nil
}

// TryLock attempts to acquire the advisory lock without blocking.
func (l *locker) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return true, nil
	}

	if err := l.acquireConn(ctx); err != nil {
		return false, err
	}

	acquired, err := l.tryAcquire(ctx)
	if err != nil || !acquired {
		l.releaseConn()
		return false, err
	}

	l.locked = true
	return true, nil
}

func (l *locker) tryAcquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := l.conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1, $2)",
		l.service.config.Namespace, l.key).Scan(&acquired)
	if err != nil {
		return false, &filelock.IOError{Op: "acquire", Key: l.name, Err: err}
	}

	return acquired, nil
}

// Unlock releases the advisory lock and returns the pinned connection to
// the pool. Calling Unlock when the lock is not held is a no-op.
func (l *locker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}

	_, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1, $2)",
		l.service.config.Namespace, l.key)
	if err != nil {
		return &filelock.IOError{Op: "release", Key: l.name, Err: err}
	}

	l.locked = false
	l.releaseConn()
	return nil
}

func (l *locker) acquireConn(ctx context.Context) error {
	if l.conn != nil {
		return nil
	}

	conn, err := l.service.pool.Acquire(ctx)
	if err != nil {
		return &filelock.IOError{Op: "connect", Key: l.name, Err: err}
	}

	l.conn = conn
	return nil
}

func (l *locker) releaseConn() {
	if l.conn != nil {
		l.conn.Release()
		l.conn = nil
	}
}
