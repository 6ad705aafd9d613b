package handlers

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/testhelpers"
)

func TestHTTPHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		store      Pinger
		wantStatus int
		wantState  string
		wantCheck  string
	}{
		{
			name:       "no store configured",
			wantStatus: http.StatusOK,
			wantState:  "ok",
		},
		{
			name:       "store reachable",
			store:      testhelpers.NewFakeStore(),
			wantStatus: http.StatusOK,
			wantState:  "ok",
			wantCheck:  "ok",
		},
		{
			name:       "store offline",
			store:      testhelpers.NewFakeStore().WithError(offline("store")),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantCheck:  "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			NewHTTPHandler(tt.store, prometheus.NewRegistry()).SetupRoutes(mux)

			var resp api.HealthResponse
			testhelpers.NewHTTPTestContext(t, http.MethodGet, "/health", nil).
				Execute(mux).
				AssertStatus(tt.wantStatus).
				AssertHeader("Content-Type", "application/json").
				DecodeJSON(&resp)

			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
			if resp.Checks["store"] != tt.wantCheck {
				t.Errorf("store check = %q, want %q", resp.Checks["store"], tt.wantCheck)
			}
		})
	}
}

func TestHTTPHandler_HealthMethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	NewHTTPHandler(nil, prometheus.NewRegistry()).SetupRoutes(mux)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		testhelpers.NewHTTPTestContext(t, method, "/health", nil).
			Execute(mux).
			AssertStatus(http.StatusMethodNotAllowed)
	}
}

func TestHTTPHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.IncTriageEdits()

	mux := http.NewServeMux()
	NewHTTPHandler(nil, reg).SetupRoutes(mux)

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/metrics", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains("socdash_triage_edits_total 1")
}
