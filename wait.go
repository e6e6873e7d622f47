package filelock

import (
	"context"
	"math/rand"
	"time"
)

// WaitConfig bounds a polling acquisition driven by Wait.
type WaitConfig struct {
	// Key identifies the lock, used in the timeout error.
	Key string
	// Timeout is the maximum wall-clock duration to keep retrying, measured
	// from the first attempt. Zero or negative means no timeout.
	Timeout time.Duration
	// RetryDelay is the sleep between failed attempts.
	RetryDelay time.Duration
	// Jitter, if positive, adds a random duration in [0, Jitter) to each
	// sleep to spread out simultaneous pollers.
	Jitter time.Duration
}

// Wait repeatedly calls try until it acquires, ctx is cancelled, or the
// configured timeout elapses. try reports (false, nil) for contention;
// any error it returns aborts the loop immediately.
//
// The loop never busy-spins: every failed attempt is followed by a
// RetryDelay sleep, interruptible by ctx.
func Wait(ctx context.Context, config WaitConfig, try func(ctx context.Context) (bool, error)) error {
	start := time.Now()
	for {
		acquired, err := try(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		if config.Timeout > 0 && time.Since(start) >= config.Timeout {
			return &TimeoutError{Key: config.Key, Duration: config.Timeout}
		}

		delay := config.RetryDelay
		if config.Jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(config.Jitter)))
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
