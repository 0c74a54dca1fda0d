package service

import (
	"time"

	"github.com/hoofprint/hoofprint/internal/adapters/actor"
	"github.com/hoofprint/hoofprint/internal/adapters/cache"
	"github.com/hoofprint/hoofprint/internal/adapters/index"
	"github.com/hoofprint/hoofprint/internal/adapters/snapshot"
	"github.com/hoofprint/hoofprint/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache injects a pre-built cache. Used by tests and by callers that
// need custom sweep cadence or clock.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithIndexStore injects a pre-built index store.
func WithIndexStore(store index.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.idx = store
		}
	}
}

// WithRegistry injects a pre-built actor registry.
func WithRegistry(r *actor.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithSnapshotStore injects a pre-built snapshot store.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.snapshots = store
		}
	}
}

// WithListTTL sets the cache TTL for unfiltered list views.
func WithListTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.listTTL = ttl
		}
	}
}

// WithPageTTL sets the cache TTL for paginated/filtered views.
func WithPageTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.pageTTL = ttl
		}
	}
}

// WithDetailTTL sets the cache TTL for per-entity detail views.
func WithDetailTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.detailTTL = ttl
		}
	}
}

// WithAnalyticsTTL sets the cache TTL for the analytics snapshot entry.
func WithAnalyticsTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.analyticsTTL = ttl
		}
	}
}

// WithSweepInterval sets the cache sweep cadence used when the service
// builds its own cache.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithTrailBatchSize bounds concurrent trail actor reads per fan-out wave.
func WithTrailBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.trailBatchSize = size
		}
	}
}

// WithRegistrationBatchSize bounds concurrent registration actor calls per
// fan-out wave.
func WithRegistrationBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.registrationBatchSize = size
		}
	}
}

// WithDebounceWindow sets the quiet period before a scheduled
// re-aggregation fires.
func WithDebounceWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.debounceWindow = window
		}
	}
}

// WithActorCallTimeout bounds each individual actor call inside a batch.
func WithActorCallTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.actorCallTimeout = timeout
		}
	}
}

// WithMaxPageLimit caps the limit parameter on paginated list reads.
func WithMaxPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxPageLimit = limit
		}
	}
}

// WithIndexPageSize sets the internal chunk size for full index scans when
// the service builds its own index store.
func WithIndexPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.indexPageSize = size
		}
	}
}

// WithAfterFunc overrides the debounce timer source, for fake-clock tests.
func WithAfterFunc(afterFunc func(time.Duration, func()) *time.Timer) Option {
	return func(s *Service) {
		s.afterFunc = afterFunc
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
