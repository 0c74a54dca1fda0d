package service

import (
	"github.com/hoofprint/hoofprint/internal/domain/model"
)

// RegistrationPage is the paginated registration list view.
type RegistrationPage struct {
	Data        []model.Registration `json:"data"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalItems  int                  `json:"totalItems"`
	TotalPages  int                  `json:"totalPages"`
	HasNextPage bool                 `json:"hasNextPage"`
	HasPrevPage bool                 `json:"hasPrevPage"`
}

// Clone returns a copy safe to hand to callers while the original sits in
// the cache. Registration is a value struct, so copying the slice is a
// deep copy.
func (p *RegistrationPage) Clone() *RegistrationPage {
	if p == nil {
		return nil
	}
	out := *p
	out.Data = append([]model.Registration(nil), p.Data...)
	return &out
}

// cloneTrails copies a cached trail list before returning it. The cache
// must never leak a live reference that a caller could mutate.
func cloneTrails(in []model.Trail) []model.Trail {
	return append([]model.Trail(nil), in...)
}

func cloneRegistrations(in []model.Registration) []model.Registration {
	return append([]model.Registration(nil), in...)
}

func cloneTemplates(in []model.Template) []model.Template {
	return append([]model.Template(nil), in...)
}
