// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CacheListTTLS is the TTL in seconds for unfiltered list views.
	CacheListTTLS int `koanf:"cache_list_ttl_s"`

	// CachePageTTLS is the TTL in seconds for paginated/filtered views.
	CachePageTTLS int `koanf:"cache_page_ttl_s"`

	// CacheDetailTTLS is the TTL in seconds for per-entity detail views.
	CacheDetailTTLS int `koanf:"cache_detail_ttl_s"`

	// CacheAnalyticsTTLS is the TTL in seconds for the cached analytics snapshot.
	CacheAnalyticsTTLS int `koanf:"cache_analytics_ttl_s"`

	// CacheSweepIntervalS sets the cadence of the background expiry sweep.
	CacheSweepIntervalS int `koanf:"cache_sweep_interval_s"`

	// TrailBatchSize bounds concurrent trail actor reads per fan-out wave.
	TrailBatchSize int `koanf:"trail_batch_size"`

	// RegistrationBatchSize bounds concurrent registration actor calls per wave.
	RegistrationBatchSize int `koanf:"registration_batch_size"`

	// DebounceMS is the quiet period before a scheduled re-aggregation fires.
	DebounceMS int `koanf:"debounce_ms"`

	// ActorCallTimeoutMS bounds each individual actor call inside a batch.
	ActorCallTimeoutMS int `koanf:"actor_call_timeout_ms"`

	// MaxPageLimit caps the ?limit parameter on paginated list endpoints.
	MaxPageLimit int `koanf:"max_page_limit"`

	// IndexPageSize is the internal chunk size for full index scans.
	IndexPageSize int `koanf:"index_page_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		CacheListTTLS:         60,
		CachePageTTLS:         30,
		CacheDetailTTLS:       120,
		CacheAnalyticsTTLS:    300,
		CacheSweepIntervalS:   60,
		TrailBatchSize:        10,
		RegistrationBatchSize: 50,
		DebounceMS:            2000,
		ActorCallTimeoutMS:    5000,
		MaxPageLimit:          100,
		IndexPageSize:         128,
	}
}

// DebounceWindow returns the configured debounce quiet period.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ActorCallTimeout returns the per-call timeout for batched actor calls.
func (c *Config) ActorCallTimeout() time.Duration {
	return time.Duration(c.ActorCallTimeoutMS) * time.Millisecond
}
