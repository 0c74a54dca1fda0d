package api

import (
	"net/http"
	"strings"
)

// TrailsHandler handles trail requests.
type TrailsHandler struct {
	deps Dependencies
}

// NewTrailsHandler creates a new trails handler.
func NewTrailsHandler(deps Dependencies) *TrailsHandler {
	return &TrailsHandler{deps: deps}
}

// HandleCollection handles /api/trails requests.
func (h *TrailsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.trails"
	switch r.Method {
	case http.MethodGet:
		trails, err := h.deps.ListTrails(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": trails})
	case http.MethodPost:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		trail, err := h.deps.CreateTrail(r.Context(), doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, trail)
	default:
		methodNotAllowed(w, op)
	}
}

// HandleItem handles /api/trails/{id} and /api/trails/{id}/registrations.
func (h *TrailsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.trail"

	rest := strings.TrimPrefix(r.URL.Path, "/api/trails/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if sub == "registrations" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, op)
			return
		}
		regs, err := h.deps.TrailRegistrations(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": regs})
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		trail, err := h.deps.GetTrail(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trail)
	case http.MethodPut:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		trail, err := h.deps.UpdateTrail(r.Context(), id, doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trail)
	case http.MethodDelete:
		if err := h.deps.DeleteTrail(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, op)
	}
}
