package inmem

import "time"

// Config holds the configuration for the in-memory lock service.
type Config struct {
	// Timeout is the maximum duration Lock blocks waiting for the lock.
	// Zero means wait until ctx is cancelled.
	Timeout time.Duration
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

// WithTimeout returns an option that bounds how long Lock blocks.
func WithTimeout(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Timeout = value
	})
}
