package pgx

import "time"

// DefaultRetryDelay is the sleep between try-lock polls when a timeout
// is configured.
const DefaultRetryDelay = 100 * time.Millisecond

// Config holds the configuration for the pgx lock service.
type Config struct {
	// Namespace is used to separate locks from different applications.
	// It becomes the first key of the PostgreSQL advisory lock.
	Namespace int32
	// Timeout is the maximum duration Lock keeps retrying. Zero means a
	// single blocking pg_advisory_lock call bounded only by ctx.
	Timeout time.Duration
	// RetryDelay is the sleep between try-lock polls when Timeout is set.
	RetryDelay time.Duration
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

// WithNamespace returns an option that sets the namespace for locks.
func WithNamespace(value int32) Option {
	return OptionFunc(func(c *Config) {
		c.Namespace = value
	})
}

// WithTimeout returns an option that bounds how long Lock keeps retrying.
func WithTimeout(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Timeout = value
	})
}

// WithRetryDelay returns an option that sets the sleep between polls.
func WithRetryDelay(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.RetryDelay = value
	})
}
