package api

import (
	"encoding/json"
	"time"

	"github.com/socdash/socdash/internal/store"
)

// ========== Triage Types ==========

// TriageRequest is the request body for POST /api/events/triage.
type TriageRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Status  string `json:"status" validate:"required,triage_status"`
	Notes   string `json:"notes" validate:"max=4096"`
}

// ========== Query Types ==========

// SQLRequest is the request body for POST /api/ai/sql.
type SQLRequest struct {
	RequestText string `json:"request_text"`
}

// SQLResponse carries the validated statement drafted for an analyst request.
type SQLResponse struct {
	SQL string `json:"sql"`
}

// QueryRequest is the request body for POST /api/db/query.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// QueryResponse carries result rows in store order.
type QueryResponse struct {
	Rows []store.Row `json:"rows"`
}

// ========== Analysis Types ==========

// AnalyzeRequest is the request body for POST /api/ai/analyze.
type AnalyzeRequest struct {
	Event *AnalyzeEvent `json:"event" validate:"required"`
}

// AnalyzeEvent is an event as the dashboard holds it, including the triage
// state embedded by GET /api/events.
type AnalyzeEvent struct {
	ID             string          `json:"id"`
	ObservedAt     time.Time       `json:"observed_at"`
	SourceAddress  string          `json:"source_address" validate:"required"`
	SourcePort     int             `json:"source_port"`
	DestAddress    string          `json:"dest_address"`
	DestPort       int             `json:"dest_port"`
	Protocol       string          `json:"protocol"`
	Signature      string          `json:"signature"`
	Severity       int             `json:"severity" validate:"gte=0"`
	Category       string          `json:"category"`
	GeoCountry     string          `json:"geo_country"`
	GeoCountryCode string          `json:"geo_country_code"`
	RawPayload     string          `json:"raw_payload"`
	Triage         json.RawMessage `json:"triage,omitempty"`
}

// AnalysisResponse carries the model's explanation of one event.
type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}

// ========== Health Types ==========

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
