package file

import (
	"time"

	"github.com/go-logr/logr"
)

// Defaults for lock acquisition.
const (
	DefaultTimeout    = 5 * time.Minute
	DefaultRetryDelay = 100 * time.Millisecond
)

// Config holds the configuration for the file lock service.
type Config struct {
	// Timeout is the maximum wall-clock duration Lock keeps retrying before
	// failing with a timeout error. Zero means retry forever.
	Timeout time.Duration
	// RetryDelay is the sleep between failed acquisition attempts.
	RetryDelay time.Duration
	// Jitter, if positive, adds a random duration in [0, Jitter) to each
	// retry sleep to reduce thundering-herd contention between pollers.
	Jitter time.Duration
	// Logger receives acquire/release events. Defaults to a discarding
	// logger; diagnostics have no effect on correctness.
	Logger logr.Logger
}

// Option configures a lock service instance.
type Option interface {
	Apply(*Config)
}

// OptionFunc is a function that configures a lock config.
type OptionFunc func(*Config)

// Apply calls f(config).
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// WithTimeout returns an option that sets the maximum duration Lock keeps
// retrying acquisition.
func WithTimeout(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Timeout = value
	})
}

// WithRetryDelay returns an option that sets the sleep between failed
// acquisition attempts.
func WithRetryDelay(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.RetryDelay = value
	})
}

// WithJitter returns an option that adds up to value of random delay to
// each retry sleep.
func WithJitter(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Jitter = value
	})
}

// WithLogger returns an option that sets the diagnostic logger.
func WithLogger(value logr.Logger) Option {
	return OptionFunc(func(c *Config) {
		c.Logger = value
	})
}
