// Package actor provides per-entity document storage actors.
//
// Each actor owns exactly one entity document and serializes its own
// operations, so concurrent puts cannot corrupt state; between concurrent
// writers the last merge applied wins. Actors are addressed only through
// opaque handles minted by the Registry, never by direct reference.
package actor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoofprint/hoofprint/internal/domain/model"
)

// Actor is the storage contract for a single entity document.
type Actor interface {
	// Get returns the current document, or ErrNoDocument if nothing has
	// been written yet (or the document was deleted).
	Get(ctx context.Context) (model.Document, error)

	// Put merges partial into the stored document: provided fields
	// overwrite, unspecified fields are retained. The first ever write
	// stamps the creation time. Returns the merged document.
	Put(ctx context.Context, partial model.Document) (model.Document, error)

	// Delete removes the stored document. Returns ErrNoDocument if there
	// is nothing to delete.
	Delete(ctx context.Context) error
}

// documentActor is the in-memory Actor implementation.
type documentActor struct {
	mu     sync.Mutex
	handle string
	doc    model.Document

	now       func() time.Time
	intercept func(handle string) error
}

func (a *documentActor) Get(ctx context.Context) (model.Document, error) {
	if err := a.guard(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.doc == nil {
		return nil, ErrNoDocument
	}
	return a.doc.Clone(), nil
}

func (a *documentActor) Put(ctx context.Context, partial model.Document) (model.Document, error) {
	if err := a.guard(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.doc == nil {
		a.doc = model.Document{
			model.FieldCreatedAt: a.now().UTC().Format(time.RFC3339),
		}
	}
	a.doc = a.doc.Merge(partial)
	return a.doc.Clone(), nil
}

func (a *documentActor) Delete(ctx context.Context) error {
	if err := a.guard(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.doc == nil {
		return ErrNoDocument
	}
	a.doc = nil
	return nil
}

// guard applies context cancellation and the test interceptor before any
// document access.
func (a *documentActor) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.intercept != nil {
		if err := a.intercept(a.handle); err != nil {
			return err
		}
	}
	return nil
}

// Registry provisions actors and resolves handles back to them. Handles are
// opaque strings, minted once per entity and never reassigned.
type Registry struct {
	mu     sync.RWMutex
	actors map[string]*documentActor

	now       func() time.Time
	intercept func(handle string) error
}

// NewRegistry creates a registry with configuration options applied.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		actors: make(map[string]*documentActor),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Provision creates a new empty actor and returns its handle. The handle
// must be recorded in the index store before the entity becomes reachable;
// if that write fails the actor is unreachable garbage, which is accepted.
func (r *Registry) Provision() string {
	handle := uuid.NewString()

	r.mu.Lock()
	r.actors[handle] = &documentActor{
		handle:    handle,
		now:       r.now,
		intercept: r.intercept,
	}
	r.mu.Unlock()

	return handle
}

// Resolve returns the actor owning handle, or ErrUnknownHandle.
func (r *Registry) Resolve(handle string) (Actor, error) {
	r.mu.RLock()
	a, exists := r.actors[handle]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrUnknownHandle
	}
	return a, nil
}

// Remove drops the actor for handle entirely. Callers delete the document
// first; Remove only reclaims the slot.
func (r *Registry) Remove(handle string) {
	r.mu.Lock()
	delete(r.actors, handle)
	r.mu.Unlock()
}

// Count returns the number of provisioned actors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
