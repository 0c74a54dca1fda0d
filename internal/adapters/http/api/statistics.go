package api

import "net/http"

// StatisticsHandler handles analytics snapshot requests.
type StatisticsHandler struct {
	deps Dependencies
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(deps Dependencies) *StatisticsHandler {
	return &StatisticsHandler{deps: deps}
}

// HandleGet handles GET /api/statistics requests.
func (h *StatisticsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.statistics")
		return
	}
	snap, err := h.deps.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRecompute handles POST /api/statistics/recompute requests.
func (h *StatisticsHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "api.statistics_recompute")
		return
	}
	snap, err := h.deps.RecomputeStatistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
