package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoofprint/hoofprint/internal/domain/analytics"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// Registration list defaults.
const (
	defaultPage  = 1
	defaultLimit = 20
)

// RegistrationQuery carries the filter and pagination parameters of a
// registration list read. Every field participates in the cache key.
type RegistrationQuery struct {
	Page      int
	Limit     int
	TrailID   string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Timezone  string // IANA zone name; dates are bucketed in this zone
}

// cacheKey builds the deterministic cache key from all relevant
// parameters, so distinct views never collide.
func (q RegistrationQuery) cacheKey() string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s:%s",
		registrationsCachePref, q.Page, q.Limit, q.TrailID, q.StartDate, q.EndDate, q.Timezone)
}

func (q *RegistrationQuery) normalize(maxLimit int) error {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		return fmt.Errorf("registrations.list: %w: limit exceeds %d", ErrBadRequest, maxLimit)
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("registrations.list: %w: invalid date %q", ErrBadRequest, d)
		}
	}
	if q.Timezone != "" {
		if _, err := time.LoadLocation(q.Timezone); err != nil {
			return fmt.Errorf("registrations.list: %w: invalid timezone %q", ErrBadRequest, q.Timezone)
		}
	}
	return nil
}

// location resolves the query timezone, defaulting to UTC. normalize has
// already validated the name.
func (q RegistrationQuery) location() *time.Location {
	if q.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// matches reports whether r passes the trail and date-range filters.
func (q RegistrationQuery) matches(r model.Registration) bool {
	if q.TrailID != "" && r.TrailID != q.TrailID {
		return false
	}
	if q.StartDate == "" && q.EndDate == "" {
		return true
	}
	day := analytics.DayKey(r.CreatedAt.In(q.location()))
	if q.StartDate != "" && day < q.StartDate {
		return false
	}
	if q.EndDate != "" && day > q.EndDate {
		return false
	}
	return true
}

// ListRegistrations returns a filtered, paginated registration view, read
// through the cache.
func (s *Service) ListRegistrations(ctx context.Context, q RegistrationQuery) (*RegistrationPage, error) {
	if err := q.normalize(s.maxPageLimit); err != nil {
		return nil, err
	}

	key := q.cacheKey()
	if v, hit := s.cache.Get(key); hit {
		if page, ok := v.(*RegistrationPage); ok {
			return page.Clone(), nil
		}
	}

	mappings, err := s.idx.ListAll(ctx, model.KindRegistration)
	if err != nil {
		return nil, fmt.Errorf("registrations.list: %w: %w", ErrInternal, err)
	}

	docs := s.fetchDocuments(ctx, mappings, s.registrationBatchSize)
	all := make([]model.Registration, 0, len(docs))
	for _, fd := range docs {
		r := model.RegistrationFromDocument(fd.Doc)
		if q.matches(r) {
			all = append(all, r)
		}
	}
	sortRegistrations(all)

	page := paginate(all, q.Page, q.Limit)
	s.cache.Set(key, page, s.pageTTL)
	metrics.RecordEntityOp(string(model.KindRegistration), "list")
	return page.Clone(), nil
}

// paginate slices the filtered set into the requested page. Pages past the
// end yield an empty data slice with correct totals.
func paginate(all []model.Registration, page, limit int) *RegistrationPage {
	totalItems := len(all)
	totalPages := (totalItems + limit - 1) / limit

	start := (page - 1) * limit
	if start > totalItems {
		start = totalItems
	}
	end := start + limit
	if end > totalItems {
		end = totalItems
	}

	return &RegistrationPage{
		Data:        append([]model.Registration(nil), all[start:end]...),
		Page:        page,
		Limit:       limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && totalItems > 0,
	}
}

// GetRegistration returns one registration, read through the cache.
func (s *Service) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	key := registrationCachePref + id
	if v, hit := s.cache.Get(key); hit {
		if r, ok := v.(model.Registration); ok {
			return r, nil
		}
	}

	doc, err := s.getDocument(ctx, model.KindRegistration, id)
	if err != nil {
		return model.Registration{}, err
	}

	r := model.RegistrationFromDocument(doc)
	s.cache.Set(key, r, s.detailTTL)
	metrics.RecordEntityOp(string(model.KindRegistration), "get")
	return r, nil
}

// CreateRegistration validates the payload, resolves the parent trail, and
// stores the registration, wiring it into the trail's secondary index.
func (s *Service) CreateRegistration(ctx context.Context, partial model.Document) (model.Registration, error) {
	trailID := strings.TrimSpace(partial.Str("trailId"))
	switch {
	case trailID == "":
		return model.Registration{}, fmt.Errorf("registrations.create: %w: missing trailId", ErrBadRequest)
	case strings.TrimSpace(partial.Str("riderName")) == "":
		return model.Registration{}, fmt.Errorf("registrations.create: %w: missing riderName", ErrBadRequest)
	case partial.Num("horseCount") < 1:
		return model.Registration{}, fmt.Errorf("registrations.create: %w: horseCount must be at least 1", ErrBadRequest)
	}

	// Parent must resolve before anything is provisioned.
	if _, err := s.idx.Lookup(ctx, model.KindTrail, trailID); err != nil {
		return model.Registration{}, mapIndexErr("registrations.create", err)
	}

	id := uuid.NewString()
	init := partial.Clone()
	init[model.FieldID] = id

	doc, err := s.createEntity(ctx, model.KindRegistration, id, init)
	if err != nil {
		return model.Registration{}, err
	}

	if err := s.idx.AppendChild(ctx, trailID, id); err != nil {
		return model.Registration{}, fmt.Errorf("registrations.create: %w: %w", ErrInternal, err)
	}

	s.invalidateRegistration(id, trailID)
	s.debounce.Schedule(trailID)
	return model.RegistrationFromDocument(doc), nil
}

// UpdateRegistration merges partial into an existing registration. Moving
// a registration to another trail revalidates the target and rewires both
// secondary indexes.
func (s *Service) UpdateRegistration(ctx context.Context, id string, partial model.Document) (model.Registration, error) {
	a, _, err := s.resolveActor(ctx, model.KindRegistration, id)
	if err != nil {
		return model.Registration{}, err
	}

	current, err := a.Get(ctx)
	if err != nil {
		return model.Registration{}, mapIndexErr("registrations.update", err)
	}
	oldTrailID := current.Str("trailId")

	update := partial.Clone()
	delete(update, model.FieldID)

	newTrailID := oldTrailID
	if raw, moved := update["trailId"]; moved {
		newTrailID, _ = raw.(string)
		if newTrailID != oldTrailID {
			if _, err := s.idx.Lookup(ctx, model.KindTrail, newTrailID); err != nil {
				return model.Registration{}, mapIndexErr("registrations.update", err)
			}
		}
	}

	doc, err := a.Put(ctx, update)
	if err != nil {
		metrics.RecordEntityOpError(string(model.KindRegistration), "update")
		return model.Registration{}, mapIndexErr("registrations.update", err)
	}
	metrics.RecordEntityOp(string(model.KindRegistration), "update")

	if newTrailID != oldTrailID {
		_ = s.idx.RemoveChild(ctx, oldTrailID, id)
		if err := s.idx.AppendChild(ctx, newTrailID, id); err != nil {
			return model.Registration{}, fmt.Errorf("registrations.update: %w: %w", ErrInternal, err)
		}
	}

	s.invalidateRegistration(id, oldTrailID, newTrailID)
	s.debounce.Schedule(scheduleKey(newTrailID))
	if newTrailID != oldTrailID {
		s.debounce.Schedule(scheduleKey(oldTrailID))
	}
	return model.RegistrationFromDocument(doc), nil
}

// DeleteRegistration removes a registration, its index mapping, and its
// secondary-index membership.
func (s *Service) DeleteRegistration(ctx context.Context, id string) error {
	doc, err := s.getDocument(ctx, model.KindRegistration, id)
	if err != nil {
		return err
	}
	trailID := doc.Str("trailId")

	if err := s.deleteEntity(ctx, model.KindRegistration, id); err != nil {
		return err
	}
	if trailID != "" {
		_ = s.idx.RemoveChild(ctx, trailID, id)
	}

	s.invalidateRegistration(id, trailID)
	s.debounce.Schedule(scheduleKey(trailID))
	return nil
}

// invalidateRegistration clears every cache family a registration mutation
// can touch: the entity's own detail entry, all paginated/filtered list
// views (shared prefix), the affected trails' registration lists and
// detail entries, and the cached analytics snapshot. The persisted
// snapshot is refreshed only by the debounce path.
func (s *Service) invalidateRegistration(id string, trailIDs ...string) {
	prefixes := []string{
		registrationsCachePref,
		registrationCachePref + id,
		analyticsCacheKey,
	}
	seen := map[string]bool{}
	for _, trailID := range trailIDs {
		if trailID == "" || seen[trailID] {
			continue
		}
		seen[trailID] = true
		prefixes = append(prefixes, trailRegsCachePrefix+trailID, trailCachePrefix+trailID)
	}
	s.invalidate(prefixes...)
}

// scheduleKey picks the debounce key for a mutation: the affected parent
// trail when known, otherwise the shared global key.
func scheduleKey(trailID string) string {
	if trailID == "" {
		return globalDebounceKey
	}
	return trailID
}
