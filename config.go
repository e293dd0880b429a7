package madness

import "github.com/rs/zerolog"

// Config holds the worker pool configuration applied at Begin.
type Config struct {
	// NumWorkers is the number of worker threads. If 0, the count comes from
	// the POOL_NTHREAD environment variable, or failing that is derived from
	// the CPU count as max(2, ncpu) - 1.
	NumWorkers int

	// QueueSizeHint is the initial capacity of the task deque.
	// If 0, the deque default is used.
	QueueSizeHint int

	// Logger, when non-nil, replaces the package logger at Begin. The
	// replacement stays in place after End.
	Logger *zerolog.Logger
}

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() Config {
	return Config{}
}

// validate checks the configuration.
func (c *Config) validate() error {
	if c.NumWorkers < 0 {
		return errInvalidConfig("NumWorkers must be >= 0")
	}
	if c.QueueSizeHint < 0 {
		return errInvalidConfig("QueueSizeHint must be >= 0")
	}
	return nil
}

// Option configures the pool at Begin.
type Option func(*Config)

// WithNumWorkers sets the worker count explicitly, overriding POOL_NTHREAD
// and the CPU-derived default.
func WithNumWorkers(n int) Option {
	return func(c *Config) {
		c.NumWorkers = n
	}
}

// WithQueueSizeHint sets the initial capacity of the task deque.
func WithQueueSizeHint(n int) Option {
	return func(c *Config) {
		c.QueueSizeHint = n
	}
}

// WithLogger directs the substrate's structured logging to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = &l
	}
}
