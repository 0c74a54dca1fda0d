// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/hoofprint/hoofprint/internal/app"
	"github.com/hoofprint/hoofprint/internal/domain/analytics"
	"github.com/hoofprint/hoofprint/internal/domain/model"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the coordinator implementation.
type Dependencies interface {
	ListTrails(ctx context.Context) ([]model.Trail, error)
	GetTrail(ctx context.Context, id string) (model.Trail, error)
	CreateTrail(ctx context.Context, partial model.Document) (model.Trail, error)
	UpdateTrail(ctx context.Context, id string, partial model.Document) (model.Trail, error)
	DeleteTrail(ctx context.Context, id string) error
	TrailRegistrations(ctx context.Context, trailID string) ([]model.Registration, error)

	ListRegistrations(ctx context.Context, q service.RegistrationQuery) (*service.RegistrationPage, error)
	GetRegistration(ctx context.Context, id string) (model.Registration, error)
	CreateRegistration(ctx context.Context, partial model.Document) (model.Registration, error)
	UpdateRegistration(ctx context.Context, id string, partial model.Document) (model.Registration, error)
	DeleteRegistration(ctx context.Context, id string) error

	ListTemplates(ctx context.Context) ([]model.Template, error)
	GetTemplate(ctx context.Context, id string) (model.Template, error)
	CreateTemplate(ctx context.Context, partial model.Document) (model.Template, error)
	UpdateTemplate(ctx context.Context, id string, partial model.Document) (model.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	Statistics(ctx context.Context) (*analytics.Snapshot, error)
	RecomputeStatistics(ctx context.Context) (*analytics.Snapshot, error)
}

// StatsProvider exposes coordinator statistics for the /stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	trailsHandler        *TrailsHandler
	registrationsHandler *RegistrationsHandler
	templatesHandler     *TemplatesHandler
	statisticsHandler    *StatisticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		trailsHandler:        NewTrailsHandler(deps),
		registrationsHandler: NewRegistrationsHandler(deps),
		templatesHandler:     NewTemplatesHandler(deps),
		statisticsHandler:    NewStatisticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/api/trails", MetricsMiddleware(s.trailsHandler.HandleCollection, "trails"))
	mux.HandleFunc("/api/trails/", MetricsMiddleware(s.trailsHandler.HandleItem, "trail"))
	mux.HandleFunc("/api/registrations", MetricsMiddleware(s.registrationsHandler.HandleCollection, "registrations"))
	mux.HandleFunc("/api/registrations/", MetricsMiddleware(s.registrationsHandler.HandleItem, "registration"))
	mux.HandleFunc("/api/templates", MetricsMiddleware(s.templatesHandler.HandleCollection, "templates"))
	mux.HandleFunc("/api/templates/", MetricsMiddleware(s.templatesHandler.HandleItem, "template"))
	mux.HandleFunc("/api/statistics", MetricsMiddleware(s.statisticsHandler.HandleGet, "statistics"))
	mux.HandleFunc("/api/statistics/recompute", MetricsMiddleware(s.statisticsHandler.HandleRecompute, "statistics_recompute"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates coordinator error kinds to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// methodNotAllowed reports an unsupported verb for a known path.
func methodNotAllowed(w http.ResponseWriter, op string) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// decodeDocument reads a JSON object body into a document.
func decodeDocument(r *http.Request) (model.Document, error) {
	var doc model.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
