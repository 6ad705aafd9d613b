package handlers

import (
	"log"
	"net/http"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/services"
	"github.com/socdash/socdash/internal/triage"
)

// APIHandler handles the dashboard API endpoints
type APIHandler struct {
	incidents *services.IncidentService
	events    *services.EventService
	triage    *services.TriageService
	queries   *services.QueryService
	stats     *services.StatsService
	analysis  *services.AnalysisService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	incidents *services.IncidentService,
	events *services.EventService,
	triage *services.TriageService,
	queries *services.QueryService,
	stats *services.StatsService,
	analysis *services.AnalysisService,
) *APIHandler {
	return &APIHandler{
		incidents: incidents,
		events:    events,
		triage:    triage,
		queries:   queries,
		stats:     stats,
		analysis:  analysis,
	}
}

// SetupRoutes sets up all API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	// Incidents
	mux.HandleFunc("GET /api/incidents", h.handleListIncidents)

	// Events and triage
	mux.HandleFunc("GET /api/events", h.handleListEvents)
	mux.HandleFunc("POST /api/events/triage", h.handleAppendTriage)
	mux.HandleFunc("GET /api/events/{id}/triage", h.handleGetTriage)

	// Natural language to SQL and raw queries
	mux.HandleFunc("POST /api/ai/sql", h.handleGenerateSQL)
	mux.HandleFunc("POST /api/db/query", h.handleExecuteQuery)
	mux.HandleFunc("POST /api/ai/analyze", h.handleAnalyzeEvent)

	// Dashboard statistics
	mux.HandleFunc("GET /api/stats/map", h.handleStatsMap)
	mux.HandleFunc("GET /api/stats/protocols", h.handleStatsProtocols)
	mux.HandleFunc("GET /api/stats/signal-noise", h.handleStatsTimeline)
	mux.HandleFunc("GET /api/stats/traffic", h.handleStatsTimeline)
	mux.HandleFunc("GET /api/stats/roi", h.handleStatsROI)
}

// handleListIncidents handles GET /api/incidents?window=24h
func (h *APIHandler) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	window, err := h.incidents.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	incidents, err := h.incidents.List(r.Context(), window)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, incidents)
}

// handleListEvents handles GET /api/events?search=&limit=
func (h *APIHandler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := api.QueryInt(r, "limit", 0)
	if err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	events, err := h.events.List(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, events)
}

// handleAppendTriage handles POST /api/events/triage
func (h *APIHandler) handleAppendTriage(w http.ResponseWriter, r *http.Request) {
	var req api.TriageRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeMalformedTriage, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondErrorWithDetails(w, http.StatusBadRequest, api.CodeMalformedTriage, "Malformed triage request", errs)
		return
	}

	status, err := triage.ParseStatus(req.Status)
	if err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeMalformedTriage, err.Error())
		return
	}

	edit, err := h.triage.Append(r.Context(), req.EventID, status, req.Notes)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	log.Printf("Triage edit %s: event %s set to %s", edit.ID, edit.EventID, edit.Status)
	api.RespondSuccess(w)
}

// handleGetTriage handles GET /api/events/{id}/triage
func (h *APIHandler) handleGetTriage(w http.ResponseWriter, r *http.Request) {
	state, err := h.triage.State(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, state)
}

// handleGenerateSQL handles POST /api/ai/sql
func (h *APIHandler) handleGenerateSQL(w http.ResponseWriter, r *http.Request) {
	var req api.SQLRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	candidate, err := h.queries.Generate(r.Context(), req.RequestText)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !candidate.OK() {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeQueryRejected, candidate.Rejection.Reason)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.SQLResponse{SQL: candidate.Accepted.SQL()})
}

// handleExecuteQuery handles POST /api/db/query
func (h *APIHandler) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req api.QueryRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	rows, err := h.queries.ValidateAndExecute(r.Context(), req.SQL)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.RowsToResponse(rows))
}

// handleAnalyzeEvent handles POST /api/ai/analyze
func (h *APIHandler) handleAnalyzeEvent(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	analysis, err := h.analysis.Analyze(r.Context(), api.AnalyzeEventToEvent(*req.Event))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.AnalysisResponse{Analysis: analysis})
}

// handleStatsMap handles GET /api/stats/map
func (h *APIHandler) handleStatsMap(w http.ResponseWriter, r *http.Request) {
	countries, err := h.stats.Countries(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, countries)
}

// handleStatsProtocols handles GET /api/stats/protocols
func (h *APIHandler) handleStatsProtocols(w http.ResponseWriter, r *http.Request) {
	protocols, err := h.stats.Protocols(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, protocols)
}

// handleStatsTimeline handles GET /api/stats/signal-noise and /api/stats/traffic
func (h *APIHandler) handleStatsTimeline(w http.ResponseWriter, r *http.Request) {
	points, err := h.stats.Timeline(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, points)
}

// handleStatsROI handles GET /api/stats/roi
func (h *APIHandler) handleStatsROI(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.ROI(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, report)
}
