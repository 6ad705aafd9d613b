package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/socdash/socdash/internal/api"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a collaborator is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPHandler handles health and metrics endpoints
type HTTPHandler struct {
	store    Pinger
	gatherer prometheus.Gatherer
}

// NewHTTPHandler creates a new HTTP handler. A nil gatherer serves the
// default Prometheus registry.
func NewHTTPHandler(store Pinger, gatherer prometheus.Gatherer) *HTTPHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HTTPHandler{
		store:    store,
		gatherer: gatherer,
	}
}

// SetupRoutes configures all HTTP routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// handleHealth reports ok while the event store answers
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		api.RespondJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		api.RespondJSON(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status: "degraded",
			Checks: map[string]string{"store": "unavailable"},
		})
		return
	}
	api.RespondJSON(w, http.StatusOK, api.HealthResponse{
		Status: "ok",
		Checks: map[string]string{"store": "ok"},
	})
}
