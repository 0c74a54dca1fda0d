package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hoofprint/hoofprint/internal/domain/analytics"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// reaggregationTimeout bounds a debounced aggregation run, which executes
// outside any request context.
const reaggregationTimeout = time.Minute

// Statistics returns the analytics snapshot: cache first, then the
// persisted snapshot (refilling the cache), computing from scratch only
// when neither layer has data.
func (s *Service) Statistics(ctx context.Context) (*analytics.Snapshot, error) {
	if v, hit := s.cache.Get(analyticsCacheKey); hit {
		if snap, ok := v.(*analytics.Snapshot); ok {
			return snap.Clone(), nil
		}
	}

	if snap, err := s.snapshots.Load(ctx); err == nil {
		s.cache.Set(analyticsCacheKey, snap, s.analyticsTTL)
		return snap.Clone(), nil
	}

	return s.runAggregation(ctx)
}

// RecomputeStatistics forces a full aggregation, bypassing both layers.
func (s *Service) RecomputeStatistics(ctx context.Context) (*analytics.Snapshot, error) {
	return s.runAggregation(ctx)
}

// runAggregation executes the full batched fan-out aggregation: trails in
// waves of trailBatchSize, registrations in waves of registrationBatchSize
// (larger because registration payloads are smaller and more numerous),
// then persists and caches the resulting snapshot.
func (s *Service) runAggregation(ctx context.Context) (*analytics.Snapshot, error) {
	const op = "aggregator.run"
	start := time.Now()

	trailMappings, err := s.idx.ListAll(ctx, model.KindTrail)
	if err != nil {
		metrics.RecordAggregationError()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	trails := make(map[string]analytics.TrailInfo, len(trailMappings))
	for _, fd := range s.fetchDocuments(ctx, trailMappings, s.trailBatchSize) {
		t := model.TrailFromDocument(fd.Doc)
		trails[fd.ID] = analytics.TrailInfo{Name: t.Name, Active: t.Active}
	}

	regMappings, err := s.idx.ListAll(ctx, model.KindRegistration)
	if err != nil {
		metrics.RecordAggregationError()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	regDocs := s.fetchDocuments(ctx, regMappings, s.registrationBatchSize)
	regs := make([]analytics.Registration, 0, len(regDocs))
	for _, fd := range regDocs {
		r := model.RegistrationFromDocument(fd.Doc)
		regs = append(regs, analytics.Registration{
			TrailID:    r.TrailID,
			HorseCount: r.HorseCount,
			At:         r.CreatedAt,
		})
	}

	snap := analytics.Compute(regs, trails, s.now())

	if err := s.snapshots.Save(ctx, snap); err != nil {
		metrics.RecordAggregationError()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}
	s.cache.Set(analyticsCacheKey, snap, s.analyticsTTL)

	durationMS := float64(time.Since(start).Milliseconds())
	metrics.RecordAggregationRun()
	metrics.RecordAggregationDuration(durationMS)
	metrics.UpdateAggregationLastUnix(float64(s.now().Unix()))
	s.logger.Debug(ctx, "aggregation complete",
		logger.Int("trails", len(trails)),
		logger.Int("registrations", len(regs)),
		logger.Float64("durationMs", durationMS),
	)

	return snap.Clone(), nil
}

// reaggregate is the debounce fire target. It runs outside the triggering
// write's lifecycle: failures are logged, never surfaced to the caller
// whose mutation scheduled it.
func (s *Service) reaggregate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), reaggregationTimeout)
	defer cancel()

	if _, err := s.runAggregation(ctx); err != nil {
		s.logger.Error(ctx, "debounced re-aggregation failed",
			logger.String("key", key),
			logger.Error(err),
		)
	}
}
