// Package index provides the authoritative entity-ID to actor-handle
// mapping, plus secondary parent->children indexes.
//
// The index store is the only discovery mechanism for "which actor owns
// this entity". Absence of a mapping means the entity does not exist; that
// is a domain error, not a cache miss.
package index

import (
	"context"
	"sync"

	"github.com/hoofprint/hoofprint/internal/domain/model"
)

// Default paging configuration.
const (
	defaultPageSize = 128
)

// Mapping is one ID -> handle record.
type Mapping struct {
	ID     string
	Handle string
}

// Store is the mapping and secondary-index contract.
type Store interface {
	// CreateMapping writes a new ID -> handle record. The handle must
	// already be provisioned; a duplicate ID yields ErrDuplicateMapping.
	CreateMapping(ctx context.Context, kind model.Kind, id, handle string) error

	// Lookup resolves id to its actor handle, or ErrNotFound.
	Lookup(ctx context.Context, kind model.Kind, id string) (string, error)

	// ListAll returns every mapping of kind in storage order. Paged
	// internally in fixed-size chunks; the ordering carries no meaning.
	ListAll(ctx context.Context, kind model.Kind) ([]Mapping, error)

	// DeleteMapping removes the mapping only. Callers must separately
	// instruct the actor to delete its document.
	DeleteMapping(ctx context.Context, kind model.Kind, id string) error

	// Count returns the number of mappings of kind.
	Count(ctx context.Context, kind model.Kind) int

	// Secondary index: ordered child ID lists per parent.
	AppendChild(ctx context.Context, parentID, childID string) error
	RemoveChild(ctx context.Context, parentID, childID string) error
	GetChildren(ctx context.Context, parentID string) ([]string, error)
}

// kindTable keeps mappings in insertion order for stable listing.
type kindTable struct {
	order  []string
	byID   map[string]string // id -> handle
	sparse int               // deleted slots still present in order
}

// InMemoryStore implements Store with mutex-guarded maps. Child list
// mutations are serialized per store, so a concurrent append and remove on
// the same parent cannot lose an update.
type InMemoryStore struct {
	mu       sync.RWMutex
	kinds    map[model.Kind]*kindTable
	children map[string][]string

	pageSize int
}

// NewInMemoryStore creates a store with configuration options applied.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		kinds:    make(map[model.Kind]*kindTable),
		children: make(map[string][]string),
		pageSize: defaultPageSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *InMemoryStore) table(kind model.Kind) *kindTable {
	t, exists := s.kinds[kind]
	if !exists {
		t = &kindTable{byID: make(map[string]string)}
		s.kinds[kind] = t
	}
	return t
}

// CreateMapping writes a new ID -> handle record.
func (s *InMemoryStore) CreateMapping(ctx context.Context, kind model.Kind, id, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(kind)
	if _, exists := t.byID[id]; exists {
		return ErrDuplicateMapping
	}
	t.byID[id] = handle
	t.order = append(t.order, id)
	return nil
}

// Lookup resolves id to its actor handle.
func (s *InMemoryStore) Lookup(ctx context.Context, kind model.Kind, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.kinds[kind]
	if !exists {
		return "", ErrNotFound
	}
	handle, exists := t.byID[id]
	if !exists {
		return "", ErrNotFound
	}
	return handle, nil
}

// ListAll returns every mapping of kind, scanning the table in fixed-size
// pages so a single lock hold never spans the whole table.
func (s *InMemoryStore) ListAll(ctx context.Context, kind model.Kind) ([]Mapping, error) {
	var out []Mapping

	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, more := s.listPage(kind, offset)
		out = append(out, page...)
		if !more {
			return out, nil
		}
	}
}

// listPage copies one page of live mappings starting at offset into the
// insertion-order slice. Deleted IDs are skipped.
func (s *InMemoryStore) listPage(kind model.Kind, offset int) ([]Mapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.kinds[kind]
	if !exists || offset >= len(t.order) {
		return nil, false
	}

	end := offset + s.pageSize
	if end > len(t.order) {
		end = len(t.order)
	}

	page := make([]Mapping, 0, end-offset)
	for _, id := range t.order[offset:end] {
		if handle, live := t.byID[id]; live {
			page = append(page, Mapping{ID: id, Handle: handle})
		}
	}
	return page, end < len(t.order)
}

// DeleteMapping removes the mapping only.
func (s *InMemoryStore) DeleteMapping(ctx context.Context, kind model.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.kinds[kind]
	if !exists {
		return ErrNotFound
	}
	if _, exists := t.byID[id]; !exists {
		return ErrNotFound
	}
	delete(t.byID, id)
	t.sparse++

	// Compact the order slice once deletions dominate it.
	if t.sparse > len(t.order)/2 {
		live := make([]string, 0, len(t.byID))
		for _, oid := range t.order {
			if _, ok := t.byID[oid]; ok {
				live = append(live, oid)
			}
		}
		t.order = live
		t.sparse = 0
	}
	return nil
}

// Count returns the number of live mappings of kind.
func (s *InMemoryStore) Count(ctx context.Context, kind model.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.kinds[kind]
	if !exists {
		return 0
	}
	return len(t.byID)
}

// AppendChild adds childID to parentID's list if not already present.
func (s *InMemoryStore) AppendChild(ctx context.Context, parentID, childID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.children[parentID]
	for _, existing := range list {
		if existing == childID {
			return nil
		}
	}
	s.children[parentID] = append(list, childID)
	return nil
}

// RemoveChild removes childID from parentID's list. Missing children are
// not an error; delete paths tolerate partial prior cleanup.
func (s *InMemoryStore) RemoveChild(ctx context.Context, parentID, childID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.children[parentID]
	for i, existing := range list {
		if existing == childID {
			s.children[parentID] = append(list[:i:i], list[i+1:]...)
			if len(s.children[parentID]) == 0 {
				delete(s.children, parentID)
			}
			return nil
		}
	}
	return nil
}

// GetChildren returns a copy of parentID's ordered child list.
func (s *InMemoryStore) GetChildren(ctx context.Context, parentID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.children[parentID]...), nil
}
