package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// ListTrails returns every trail, read through the cache.
func (s *Service) ListTrails(ctx context.Context) ([]model.Trail, error) {
	if v, hit := s.cache.Get(trailsListCacheKey); hit {
		if trails, ok := v.([]model.Trail); ok {
			return cloneTrails(trails), nil
		}
	}

	mappings, err := s.idx.ListAll(ctx, model.KindTrail)
	if err != nil {
		return nil, fmt.Errorf("trails.list: %w: %w", ErrInternal, err)
	}

	docs := s.fetchDocuments(ctx, mappings, s.trailBatchSize)
	trails := make([]model.Trail, 0, len(docs))
	for _, fd := range docs {
		trails = append(trails, model.TrailFromDocument(fd.Doc))
	}

	s.cache.Set(trailsListCacheKey, trails, s.listTTL)
	metrics.RecordEntityOp(string(model.KindTrail), "list")
	return cloneTrails(trails), nil
}

// GetTrail returns one trail, read through the cache.
func (s *Service) GetTrail(ctx context.Context, id string) (model.Trail, error) {
	key := trailCachePrefix + id
	if v, hit := s.cache.Get(key); hit {
		if t, ok := v.(model.Trail); ok {
			return t, nil
		}
	}

	doc, err := s.getDocument(ctx, model.KindTrail, id)
	if err != nil {
		return model.Trail{}, err
	}

	t := model.TrailFromDocument(doc)
	s.cache.Set(key, t, s.detailTTL)
	metrics.RecordEntityOp(string(model.KindTrail), "get")
	return t, nil
}

// CreateTrail validates and stores a new trail.
func (s *Service) CreateTrail(ctx context.Context, partial model.Document) (model.Trail, error) {
	if strings.TrimSpace(partial.Str("name")) == "" {
		return model.Trail{}, fmt.Errorf("trails.create: %w: missing name", ErrBadRequest)
	}

	id := uuid.NewString()
	init := partial.Clone()
	init[model.FieldID] = id

	doc, err := s.createEntity(ctx, model.KindTrail, id, init)
	if err != nil {
		return model.Trail{}, err
	}

	s.invalidate(trailsListCacheKey)
	return model.TrailFromDocument(doc), nil
}

// UpdateTrail merges partial into an existing trail.
func (s *Service) UpdateTrail(ctx context.Context, id string, partial model.Document) (model.Trail, error) {
	update := partial.Clone()
	delete(update, model.FieldID)

	doc, err := s.updateEntity(ctx, model.KindTrail, id, update)
	if err != nil {
		return model.Trail{}, err
	}

	s.invalidate(trailsListCacheKey, trailCachePrefix+id)
	return model.TrailFromDocument(doc), nil
}

// DeleteTrail removes a trail and all of its dependent registrations. The
// dependents are deleted first, in bounded batches; an individual
// dependent-deletion failure is logged and skipped rather than aborting the
// parent deletion.
func (s *Service) DeleteTrail(ctx context.Context, id string) error {
	// Resolve before touching dependents so a missing trail fails fast.
	if _, _, err := s.resolveActor(ctx, model.KindTrail, id); err != nil {
		return err
	}

	children, err := s.idx.GetChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("trails.delete: %w: %w", ErrInternal, err)
	}

	s.deleteDependents(ctx, id, children)

	if err := s.deleteEntity(ctx, model.KindTrail, id); err != nil {
		return err
	}

	s.invalidate(
		trailsListCacheKey,
		trailCachePrefix+id,
		trailRegsCachePrefix+id,
		registrationsCachePref,
		registrationCachePref,
		analyticsCacheKey,
	)
	s.debounce.Schedule(id)
	return nil
}

// deleteDependents removes dependent registrations in waves bounded by the
// registration batch size.
func (s *Service) deleteDependents(ctx context.Context, trailID string, children []string) {
	batchSize := s.registrationBatchSize
	for start := 0; start < len(children); start += batchSize {
		end := start + batchSize
		if end > len(children) {
			end = len(children)
		}
		metrics.RecordFanoutBatch()

		var wg sync.WaitGroup
		for _, childID := range children[start:end] {
			wg.Add(1)
			go func(childID string) {
				defer wg.Done()

				if err := s.deleteEntity(ctx, model.KindRegistration, childID); err != nil {
					s.logger.Warn(ctx, "dependent registration delete failed, continuing",
						logger.String("trailID", trailID),
						logger.String("registrationID", childID),
						logger.Error(err),
					)
				}
				if err := s.idx.RemoveChild(ctx, trailID, childID); err != nil {
					s.logger.Warn(ctx, "secondary index cleanup failed",
						logger.String("trailID", trailID),
						logger.String("registrationID", childID),
						logger.Error(err),
					)
				}
			}(childID)
		}
		wg.Wait()
	}
}

// TrailRegistrations returns the registrations attached to a trail via the
// secondary index, read through the cache.
func (s *Service) TrailRegistrations(ctx context.Context, trailID string) ([]model.Registration, error) {
	key := trailRegsCachePrefix + trailID
	if v, hit := s.cache.Get(key); hit {
		if regs, ok := v.([]model.Registration); ok {
			return cloneRegistrations(regs), nil
		}
	}

	if _, _, err := s.resolveActor(ctx, model.KindTrail, trailID); err != nil {
		return nil, err
	}

	children, err := s.idx.GetChildren(ctx, trailID)
	if err != nil {
		return nil, fmt.Errorf("trails.registrations: %w: %w", ErrInternal, err)
	}

	regs, err := s.fetchRegistrationsByID(ctx, children)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, regs, s.pageTTL)
	metrics.RecordEntityOp(string(model.KindTrail), "registrations")
	return cloneRegistrations(regs), nil
}

// fetchRegistrationsByID resolves registration IDs to mappings and fans
// out. IDs whose mapping vanished are skipped: the secondary index may
// trail the primary mapping during concurrent deletes.
func (s *Service) fetchRegistrationsByID(ctx context.Context, ids []string) ([]model.Registration, error) {
	mappings := s.lookupMappings(ctx, model.KindRegistration, ids)
	docs := s.fetchDocuments(ctx, mappings, s.registrationBatchSize)

	regs := make([]model.Registration, 0, len(docs))
	for _, fd := range docs {
		regs = append(regs, model.RegistrationFromDocument(fd.Doc))
	}
	sortRegistrations(regs)
	return regs, nil
}

func sortRegistrations(regs []model.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].CreatedAt.Before(regs[j].CreatedAt)
		}
		return regs[i].ID < regs[j].ID
	})
}
