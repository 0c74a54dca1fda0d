package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// ListTemplates returns every notification template, read through the cache.
func (s *Service) ListTemplates(ctx context.Context) ([]model.Template, error) {
	if v, hit := s.cache.Get(templatesListCacheKey); hit {
		if templates, ok := v.([]model.Template); ok {
			return cloneTemplates(templates), nil
		}
	}

	mappings, err := s.idx.ListAll(ctx, model.KindTemplate)
	if err != nil {
		return nil, fmt.Errorf("templates.list: %w: %w", ErrInternal, err)
	}

	docs := s.fetchDocuments(ctx, mappings, s.trailBatchSize)
	templates := make([]model.Template, 0, len(docs))
	for _, fd := range docs {
		templates = append(templates, model.TemplateFromDocument(fd.Doc))
	}

	s.cache.Set(templatesListCacheKey, templates, s.listTTL)
	metrics.RecordEntityOp(string(model.KindTemplate), "list")
	return cloneTemplates(templates), nil
}

// GetTemplate returns one template, read through the cache.
func (s *Service) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	key := templateCachePrefix + id
	if v, hit := s.cache.Get(key); hit {
		if t, ok := v.(model.Template); ok {
			return t, nil
		}
	}

	doc, err := s.getDocument(ctx, model.KindTemplate, id)
	if err != nil {
		return model.Template{}, err
	}

	t := model.TemplateFromDocument(doc)
	s.cache.Set(key, t, s.detailTTL)
	metrics.RecordEntityOp(string(model.KindTemplate), "get")
	return t, nil
}

// CreateTemplate validates and stores a new template.
func (s *Service) CreateTemplate(ctx context.Context, partial model.Document) (model.Template, error) {
	if strings.TrimSpace(partial.Str("name")) == "" {
		return model.Template{}, fmt.Errorf("templates.create: %w: missing name", ErrBadRequest)
	}

	id := uuid.NewString()
	init := partial.Clone()
	init[model.FieldID] = id

	doc, err := s.createEntity(ctx, model.KindTemplate, id, init)
	if err != nil {
		return model.Template{}, err
	}

	s.invalidate(templatesListCacheKey)
	return model.TemplateFromDocument(doc), nil
}

// UpdateTemplate merges partial into an existing template.
func (s *Service) UpdateTemplate(ctx context.Context, id string, partial model.Document) (model.Template, error) {
	update := partial.Clone()
	delete(update, model.FieldID)

	doc, err := s.updateEntity(ctx, model.KindTemplate, id, update)
	if err != nil {
		return model.Template{}, err
	}

	s.invalidate(templatesListCacheKey, templateCachePrefix+id)
	return model.TemplateFromDocument(doc), nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.deleteEntity(ctx, model.KindTemplate, id); err != nil {
		return err
	}

	s.invalidate(templatesListCacheKey, templateCachePrefix+id)
	return nil
}
