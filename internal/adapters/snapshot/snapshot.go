// Package snapshot persists the materialized analytics view.
//
// This is the durable layer under the key "analytics:data", distinct from
// the cache entry "analytics-data": the persisted snapshot survives cache
// invalidation and process restart, the cached one does not. Snapshots are
// overwritten wholesale, never partially updated.
package snapshot

import (
	"context"
	"sync"

	"github.com/hoofprint/hoofprint/internal/domain/analytics"
)

// Key is the storage identifier for the persisted snapshot.
const Key = "analytics:data"

// Store is the snapshot persistence contract.
type Store interface {
	// Save overwrites the persisted snapshot.
	Save(ctx context.Context, snap *analytics.Snapshot) error

	// Load returns the persisted snapshot, or ErrNoSnapshot when none has
	// been saved yet.
	Load(ctx context.Context) (*analytics.Snapshot, error)
}

// InMemoryStore implements Store with a mutex-guarded slot.
type InMemoryStore struct {
	mu   sync.RWMutex
	snap *analytics.Snapshot
}

// NewInMemoryStore creates an empty snapshot store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Save overwrites the persisted snapshot.
func (s *InMemoryStore) Save(ctx context.Context, snap *analytics.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap.Clone()
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the persisted snapshot.
func (s *InMemoryStore) Load(ctx context.Context) (*analytics.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil, ErrNoSnapshot
	}
	return s.snap.Clone(), nil
}
