// Package redis implements filelock.Service on Redis keys. Acquisition is
// SET NX with a per-acquisition owner token; release is a compare-and-delete
// script, so only the current owner can delete the key.
package redis

import (
	"context"
	"sync"

	"github.com/asavras/filelock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	_ filelock.Service = (*Service)(nil)
	_ filelock.Locker  = (*locker)(nil)
)

// releaseScript deletes the key only while it still holds this locker's
// token, so a lock that expired and was re-acquired elsewhere is never
// released from here.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Service implements filelock.Service using Redis keys.
type Service struct {
	config Config
	client redis.UniversalClient
}

// New creates a new lock service on top of a Redis client.
func New(client redis.UniversalClient, options ...Option) *Service {
	config := Config{
		RetryDelay: DefaultRetryDelay,
	}
	for _, opt := range options {
		opt.Apply(&config)
	}

	return &Service{
		config: config,
		client: client,
	}
}

// NewLock creates a new lock with the given name.
func (s *Service) NewLock(name string) filelock.Locker {
	key := name
	if s.config.Namespace != "" {
		key = s.config.Namespace + ":" + name
	}

	return &locker{
		service: s,
		key:     key,
	}
}

type locker struct {
	service *Service
	key     string

	mu     sync.Mutex
	token  string
	locked bool
}

// Lock acquires the lock, polling until the key can be set, the configured
// timeout elapses, or ctx is cancelled.
func (l *locker) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return nil
	}

	// A fresh token per acquisition; release only matches this one.
	token := uuid.NewString()

	config := l.service.config
	err := filelock.Wait(ctx, filelock.WaitConfig{
		Key:        l.key,
		Timeout:    config.Timeout,
		RetryDelay: config.RetryDelay,
		Jitter:     config.Jitter,
	}, func(ctx context.Context) (bool, error) {
		return l.trySet(ctx, token)
	})
	if err != nil {
		return err
	}

	l.token = token
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock with a single SET NX.
func (l *locker) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	token := uuid.NewString()
	acquired, err := l.trySet(ctx, token)
	if err != nil || !acquired {
		return false, err
	}

	l.token = token
	l.locked = true
	return true, nil
}

func (l *locker) trySet(ctx context.Context, token string) (bool, error) {
	acquired, err := l.service.client.SetNX(ctx, l.key, token, l.service.config.TTL).Result()
	if err != nil {
		return false, &filelock.IOError{Op: "acquire", Key: l.key, Err: err}
	}

	return acquired, nil
}

// Unlock deletes the lock key if this instance still owns it. Calling
// Unlock when the lock is not held is a no-op.
func (l *locker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}

	token := l.token
	l.token = ""
	l.locked = false

	err := releaseScript.Run(ctx, l.service.client, []string{l.key}, token).Err()
	if err != nil && err != redis.Nil {
		return &filelock.IOError{Op: "release", Key: l.key, Err: err}
	}

	return nil
}
