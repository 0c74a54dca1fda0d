// Package service provides the coordinator that routes entity operations,
// applies cache-read-through, and owns the invalidation and debounce policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hoofprint/hoofprint/internal/adapters/actor"
	"github.com/hoofprint/hoofprint/internal/adapters/cache"
	"github.com/hoofprint/hoofprint/internal/adapters/index"
	"github.com/hoofprint/hoofprint/internal/adapters/snapshot"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// Default coordinator configuration constants.
const (
	defaultListTTL           = 60 * time.Second
	defaultPageTTL           = 30 * time.Second
	defaultDetailTTL         = 2 * time.Minute
	defaultAnalyticsTTL      = 5 * time.Minute
	defaultSweepInterval     = time.Minute
	defaultTrailBatch        = 10
	defaultRegistrationBatch = 50
	defaultDebounceWindow    = 2 * time.Second
	defaultActorCallTimeout  = 5 * time.Second
	defaultMaxPageLimit      = 100
)

// Cache key layout. Families share prefixes so one invalidation call clears
// a whole set of paginated/filtered entries.
const (
	trailsListCacheKey     = "trails:list"
	trailCachePrefix       = "trail:"
	trailRegsCachePrefix   = "trail_registrations:"
	registrationsCachePref = "registrations:"
	registrationCachePref  = "registration:"
	templatesListCacheKey  = "templates:list"
	templateCachePrefix    = "template:"
	analyticsCacheKey      = "analytics-data"
)

// Service is the single entry point coordinating cache, index, actors,
// snapshot persistence, and debounced re-aggregation. Each instance owns
// its own cache and debounce state; instances observe each other's writes
// with a lag bounded by the relevant TTL.
type Service struct {
	mu      sync.RWMutex
	started bool

	cache     *cache.Cache
	idx       index.Store
	registry  *actor.Registry
	snapshots snapshot.Store
	debounce  *debouncer

	listTTL      time.Duration
	pageTTL      time.Duration
	detailTTL    time.Duration
	analyticsTTL time.Duration

	sweepInterval         time.Duration
	trailBatchSize        int
	registrationBatchSize int
	debounceWindow        time.Duration
	actorCallTimeout      time.Duration
	maxPageLimit          int
	indexPageSize         int

	afterFunc func(time.Duration, func()) *time.Timer
	now       func() time.Time

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		listTTL:               defaultListTTL,
		pageTTL:               defaultPageTTL,
		detailTTL:             defaultDetailTTL,
		analyticsTTL:          defaultAnalyticsTTL,
		sweepInterval:         defaultSweepInterval,
		trailBatchSize:        defaultTrailBatch,
		registrationBatchSize: defaultRegistrationBatch,
		debounceWindow:        defaultDebounceWindow,
		actorCallTimeout:      defaultActorCallTimeout,
		maxPageLimit:          defaultMaxPageLimit,
		now:                   time.Now,
		logger:                logger.Named("coordinator"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes any collaborators not injected via options and launches
// the cache sweep. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.cache == nil {
		s.cache = cache.New(cache.WithSweepInterval(s.sweepInterval))
	}
	if s.idx == nil {
		idxOpts := []index.Option{}
		if s.indexPageSize > 0 {
			idxOpts = append(idxOpts, index.WithPageSize(s.indexPageSize))
		}
		s.idx = index.NewInMemoryStore(idxOpts...)
	}
	if s.registry == nil {
		s.registry = actor.NewRegistry()
	}
	if s.snapshots == nil {
		s.snapshots = snapshot.NewInMemoryStore()
	}
	s.debounce = newDebouncer(s.debounceWindow, s.reaggregate, s.afterFunc)

	s.cache.StartSweeping(ctx)

	s.started = true
	s.logger.Info(ctx, "coordinator started",
		logger.Int("trailBatchSize", s.trailBatchSize),
		logger.Int("registrationBatchSize", s.registrationBatchSize),
		logger.Any("debounceWindow", s.debounceWindow),
	)
	return nil
}

// Stop halts the cache sweep and cancels pending debounce timers. A pending
// re-aggregation lost here is acceptable: it is idempotent and re-triggered
// on demand.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.debounce.StopAll()
	s.cache.Stop()

	s.started = false
	s.logger.Info(context.Background(), "coordinator stopped")
}

// GetStats returns coordinator statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["cacheEntries"] = s.cache.Len()
	stats["pendingReaggregations"] = s.debounce.Pending()
	stats["actors"] = s.registry.Count()
	for _, kind := range []model.Kind{model.KindTrail, model.KindRegistration, model.KindTemplate} {
		n := s.idx.Count(ctx, kind)
		stats[string(kind)] = n
		metrics.UpdateEntitiesTracked(string(kind), n)
	}
	return stats
}

// invalidate clears every cache family touched by a mutation. Invalidation
// is unconditional and immediate; it never substitutes for re-running the
// aggregation, which only the debounce path refreshes.
func (s *Service) invalidate(prefixes ...string) {
	for _, p := range prefixes {
		s.cache.InvalidatePrefix(p)
	}
}

// mapIndexErr converts index-store lookup failures into coordinator kinds.
func mapIndexErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, index.ErrNotFound) || errors.Is(err, actor.ErrNoDocument) || errors.Is(err, actor.ErrUnknownHandle)
}
