package redis

import "time"

// DefaultRetryDelay is the sleep between failed acquisition attempts.
const DefaultRetryDelay = 100 * time.Millisecond

// Config holds the configuration for the redis lock service.
type Config struct {
	// Namespace prefixes every lock key, separating locks from different
	// applications sharing one Redis.
	Namespace string
	// TTL is the expiry set on the lock key. Zero means no expiry; the
	// lock then lives until Unlock, like the other backends. There is no
	// lease renewal: a TTL shorter than the critical section loses the lock.
	TTL time.Duration
	// Timeout is the maximum duration Lock keeps retrying. Zero means
	// retry until ctx is cancelled.
	Timeout time.Duration
	// RetryDelay is the sleep between failed acquisition attempts.
	RetryDelay time.Duration
	// Jitter, if positive, adds a random duration in [0, Jitter) to each
	// retry sleep.
	Jitter time.Duration
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

// WithNamespace returns an option that sets the key prefix for locks.
func WithNamespace(value string) Option {
	return OptionFunc(func(c *Config) {
		c.Namespace = value
	})
}

// WithTTL returns an option that sets the expiry on lock keys.
func WithTTL(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.TTL = value
	})
}

// WithTimeout returns an option that bounds how long Lock keeps retrying.
func WithTimeout(value time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.Timeout = value
	})
}

// WithRetryDelay returns an option that sets the sleep between attempts.
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
