// Package cache provides an in-process TTL cache with prefix invalidation.
//
// The cache is an auxiliary view, never authoritative: losing every entry
// changes latency, not correctness. Entries carry per-call TTLs and are
// removed lazily on read, eagerly on prefix invalidation, and periodically
// by a background sweep. There is no size-based eviction; capacity is
// bounded only by TTL and sweep cadence, which is a known limitation
// accepted for small, short-lived entries.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultSweepInterval = time.Minute
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a string-keyed expiring store. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	sweepInterval time.Duration
	now           func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a cache with configuration options applied.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]entry),
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logger.Named("cache"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the live value for key. An entry whose TTL has passed is
// treated as absent and removed as a side effect.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		metrics.RecordCacheMiss()
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		// Lazy expiry. Re-check under the write lock: a concurrent Set may
		// have replaced the entry with a fresh one.
		c.mu.Lock()
		if cur, still := c.entries[key]; still && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
			metrics.RecordCacheEviction(1)
			metrics.UpdateCacheSize(len(c.entries))
		}
		c.mu.Unlock()
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return e.value, true
}

// Set stores value under key with the caller-specified TTL, overwriting any
// existing entry. Non-positive TTLs are ignored.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	metrics.UpdateCacheSize(len(c.entries))
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix in one
// pass and returns the number removed. Passing a full key performs exact
// invalidation.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordCacheInvalidated(removed)
		metrics.UpdateCacheSize(len(c.entries))
	}
	return removed
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeping launches the background expiry sweep. The sweep runs on a
// fixed interval independent of read/write traffic so that keys never read
// again after expiry cannot accumulate.
func (c *Cache) StartSweeping(ctx context.Context) {
	go func() {
		defer close(c.done)

		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				if removed := c.sweep(); removed > 0 {
					c.logger.Debug(ctx, "swept expired cache entries", logger.Int("removed", removed))
				}
			}
		}
	}()
}

// Stop terminates the background sweep. Idempotent.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// sweep removes every expired entry and returns the number removed.
func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordCacheEviction(removed)
		metrics.UpdateCacheSize(len(c.entries))
	}
	return removed
}
