package cache

import "time"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithSweepInterval sets the cadence of the background expiry sweep.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) {
		if interval > 0 {
			c.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}
