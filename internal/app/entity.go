package service

import (
	"context"
	"fmt"

	"github.com/hoofprint/hoofprint/internal/adapters/actor"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// resolveActor maps (kind, id) to the owning actor. A missing mapping is a
// domain "not found", never a cache concern.
func (s *Service) resolveActor(ctx context.Context, kind model.Kind, id string) (actor.Actor, string, error) {
	handle, err := s.idx.Lookup(ctx, kind, id)
	if err != nil {
		return nil, "", mapIndexErr(string(kind)+".resolve", err)
	}
	a, err := s.registry.Resolve(handle)
	if err != nil {
		return nil, "", mapIndexErr(string(kind)+".resolve", err)
	}
	return a, handle, nil
}

// getDocument is the single-entity read path: any actor failure is fatal to
// the call, unlike batched fan-out where failures degrade the result.
func (s *Service) getDocument(ctx context.Context, kind model.Kind, id string) (model.Document, error) {
	a, _, err := s.resolveActor(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	doc, err := a.Get(ctx)
	if err != nil {
		return nil, mapIndexErr(string(kind)+".get", err)
	}
	return doc, nil
}

// createEntity provisions an actor, writes the index mapping, and
// initializes the document. The mapping is written before the first
// document write; if initialization fails the mapping is rolled back and
// the actor becomes unreachable garbage, which holds no external
// references and is never listed.
func (s *Service) createEntity(ctx context.Context, kind model.Kind, id string, partial model.Document) (model.Document, error) {
	op := string(kind) + ".create"

	handle := s.registry.Provision()
	if err := s.idx.CreateMapping(ctx, kind, id, handle); err != nil {
		s.registry.Remove(handle)
		metrics.RecordEntityOpError(string(kind), "create")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	a, err := s.registry.Resolve(handle)
	if err != nil {
		metrics.RecordEntityOpError(string(kind), "create")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	doc, err := a.Put(ctx, partial)
	if err != nil {
		_ = s.idx.DeleteMapping(ctx, kind, id)
		s.registry.Remove(handle)
		metrics.RecordEntityOpError(string(kind), "create")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	metrics.RecordEntityOp(string(kind), "create")
	return doc, nil
}

// updateEntity merges partial into the stored document. Provided fields
// overwrite, unspecified fields retain their previous value.
func (s *Service) updateEntity(ctx context.Context, kind model.Kind, id string, partial model.Document) (model.Document, error) {
	a, _, err := s.resolveActor(ctx, kind, id)
	if err != nil {
		metrics.RecordEntityOpError(string(kind), "update")
		return nil, err
	}
	doc, err := a.Put(ctx, partial)
	if err != nil {
		metrics.RecordEntityOpError(string(kind), "update")
		return nil, mapIndexErr(string(kind)+".update", err)
	}
	metrics.RecordEntityOp(string(kind), "update")
	return doc, nil
}

// deleteEntity removes the document, the actor, and the index mapping.
func (s *Service) deleteEntity(ctx context.Context, kind model.Kind, id string) error {
	a, handle, err := s.resolveActor(ctx, kind, id)
	if err != nil {
		metrics.RecordEntityOpError(string(kind), "delete")
		return err
	}
	if err := a.Delete(ctx); err != nil {
		metrics.RecordEntityOpError(string(kind), "delete")
		return mapIndexErr(string(kind)+".delete", err)
	}
	if err := s.idx.DeleteMapping(ctx, kind, id); err != nil {
		metrics.RecordEntityOpError(string(kind), "delete")
		return mapIndexErr(string(kind)+".delete", err)
	}
	s.registry.Remove(handle)
	metrics.RecordEntityOp(string(kind), "delete")
	return nil
}
