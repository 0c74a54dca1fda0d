package api

import (
	"net/http"
	"strconv"
	"strings"

	service "github.com/hoofprint/hoofprint/internal/app"
)

// RegistrationsHandler handles registration requests.
type RegistrationsHandler struct {
	deps Dependencies
}

// NewRegistrationsHandler creates a new registrations handler.
func NewRegistrationsHandler(deps Dependencies) *RegistrationsHandler {
	return &RegistrationsHandler{deps: deps}
}

// HandleCollection handles /api/registrations requests.
func (h *RegistrationsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.registrations"
	switch r.Method {
	case http.MethodGet:
		q, err := parseRegistrationQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		page, err := h.deps.ListRegistrations(r.Context(), q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	case http.MethodPost:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		reg, err := h.deps.CreateRegistration(r.Context(), doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reg)
	default:
		methodNotAllowed(w, op)
	}
}

// HandleItem handles /api/registrations/{id} requests.
func (h *RegistrationsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.registration"

	id := strings.TrimPrefix(r.URL.Path, "/api/registrations/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		reg, err := h.deps.GetRegistration(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	case http.MethodPut:
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		reg, err := h.deps.UpdateRegistration(r.Context(), id, doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	case http.MethodDelete:
		if err := h.deps.DeleteRegistration(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, op)
	}
}

// parseRegistrationQuery extracts filter and pagination parameters.
func parseRegistrationQuery(r *http.Request) (service.RegistrationQuery, error) {
	q := service.RegistrationQuery{
		TrailID:   r.URL.Query().Get("trail"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
		Timezone:  r.URL.Query().Get("timezone"),
	}

	var err error
	if q.Page, err = parseIntParam(r, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = parseIntParam(r, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func parseIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
