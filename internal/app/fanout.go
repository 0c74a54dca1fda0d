package service

import (
	"context"
	"sync"

	"github.com/hoofprint/hoofprint/internal/adapters/index"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// fetchedDoc pairs an entity ID with its fetched document.
type fetchedDoc struct {
	ID  string
	Doc model.Document
}

// fetchDocuments fans out actor reads in fixed-size batches: a batch's
// calls run concurrently and the whole batch is awaited before the next
// starts, bounding peak concurrent outbound calls regardless of total
// entity count. Calls within a batch may complete in any order; issue
// order is preserved in the result.
//
// Individual call failures are logged and the entity excluded; a single
// bad actor never aborts the whole fan-out.
func (s *Service) fetchDocuments(ctx context.Context, mappings []index.Mapping, batchSize int) []fetchedDoc {
	if batchSize < 1 {
		batchSize = 1
	}

	out := make([]fetchedDoc, 0, len(mappings))
	for start := 0; start < len(mappings); start += batchSize {
		end := start + batchSize
		if end > len(mappings) {
			end = len(mappings)
		}
		batch := mappings[start:end]
		metrics.RecordFanoutBatch()

		results := make([]fetchedDoc, len(batch))
		fetched := make([]bool, len(batch))

		var wg sync.WaitGroup
		for i, m := range batch {
			wg.Add(1)
			go func(i int, m index.Mapping) {
				defer wg.Done()

				metrics.RecordFanoutCall()
				doc, err := s.fetchOne(ctx, m.Handle)
				if err != nil {
					metrics.RecordFanoutCallFailure()
					s.logger.Warn(ctx, "actor fetch failed, excluding entity",
						logger.String("id", m.ID),
						logger.Error(err),
					)
					return
				}
				results[i] = fetchedDoc{ID: m.ID, Doc: doc}
				fetched[i] = true
			}(i, m)
		}
		wg.Wait()

		for i := range batch {
			if fetched[i] {
				out = append(out, results[i])
			}
		}
	}
	return out
}

// lookupMappings resolves a list of entity IDs to mappings, silently
// skipping IDs with no live mapping.
func (s *Service) lookupMappings(ctx context.Context, kind model.Kind, ids []string) []index.Mapping {
	mappings := make([]index.Mapping, 0, len(ids))
	for _, id := range ids {
		handle, err := s.idx.Lookup(ctx, kind, id)
		if err != nil {
			continue
		}
		mappings = append(mappings, index.Mapping{ID: id, Handle: handle})
	}
	return mappings
}

// fetchOne resolves a handle and reads its document under the per-call
// timeout, so one slow actor cannot stall an entire batch indefinitely.
func (s *Service) fetchOne(ctx context.Context, handle string) (model.Document, error) {
	a, err := s.registry.Resolve(handle)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.actorCallTimeout)
	defer cancel()

	return a.Get(callCtx)
}
