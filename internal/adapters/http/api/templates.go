package api

import (
	"net/http"
	"strings"
)

// TemplatesHandler handles notification template requests.
type TemplatesHandler struct {
	deps Dependencies
}

// NewTemplatesHandler creates a new templates handler.
func NewTemplatesHandler(deps Dependencies) *TemplatesHandler {
	return &TemplatesHandler{deps: deps}
}

// HandleCollection handles /api/templates requests.
func (h *TemplatesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.templates"
	switch r.Method {
	case http.MethodGet:
		templates, err := h.deps.ListTemplates(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": templates})
	case http.MethodPost:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		tpl, err := h.deps.CreateTemplate(r.Context(), doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tpl)
	default:
		methodNotAllowed(w, op)
	}
}

// HandleItem handles /api/templates/{id} requests.
func (h *TemplatesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.template"

	id := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tpl, err := h.deps.GetTemplate(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	case http.MethodPut:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		tpl, err := h.deps.UpdateTemplate(r.Context(), id, doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	case http.MethodDelete:
		if err := h.deps.DeleteTemplate(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, op)
	}
}
