package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/incidents"
	"github.com/socdash/socdash/internal/services"
	"github.com/socdash/socdash/internal/sqlguard"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/testhelpers"
	"github.com/socdash/socdash/internal/upstream"
)

// newTestMux wires the API handler to in-memory collaborators
func newTestMux(s *testhelpers.FakeStore, model *testhelpers.FakeModel) *http.ServeMux {
	prompt := func(request string) string { return request }
	h := NewAPIHandler(
		services.NewIncidentService(s, 24*time.Hour, 168*time.Hour, 500, nil),
		services.NewEventService(s, 24*time.Hour, 100),
		services.NewTriageService(s, nil),
		services.NewQueryService(s, sqlguard.NewPipeline(model, prompt), nil),
		services.NewStatsService(s),
		services.NewAnalysisService(model),
	)
	mux := http.NewServeMux()
	h.SetupRoutes(mux)
	return mux
}

func offline(service string) error {
	return upstream.Unavailable(service, errors.New("dial tcp 127.0.0.1:9000: connect: connection refused"))
}

func TestAPIHandler_ListIncidents(t *testing.T) {
	s := testhelpers.NewFakeStore(
		testhelpers.NewEventBuilder().WithSource("1.2.3.4").WithSignature("A").Ago(2*time.Minute).Build(),
		testhelpers.NewEventBuilder().WithSource("1.2.3.4").WithSignature("A").Ago(time.Minute).Build(),
	)
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	var got []incidents.Incident
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/incidents?window=1h", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertHeader("Content-Type", "application/json").
		DecodeJSON(&got)

	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("expected one incident with count 2, got %+v", got)
	}
}

func TestAPIHandler_ListIncidents_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{"bad window", "/api/incidents?window=forever", nil, http.StatusBadRequest, api.CodeValidation},
		{"window above max", "/api/incidents?window=400h", nil, http.StatusBadRequest, api.CodeValidation},
		{"store offline", "/api/incidents", offline("store"), http.StatusServiceUnavailable, api.CodeUnavailable},
		{"store timeout", "/api/incidents", &upstream.Error{Service: "store", Timeout: true, Err: context.DeadlineExceeded}, http.StatusServiceUnavailable, api.CodeTimeout},
		{"other failure", "/api/incidents", errors.New("scan: bad column"), http.StatusInternalServerError, api.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(testhelpers.NewFakeStore().WithError(tt.storeErr), testhelpers.NewFakeModel(""))

			var resp api.ErrorResponse
			testhelpers.NewHTTPTestContext(t, http.MethodGet, tt.path, nil).
				Execute(mux).
				AssertStatus(tt.wantStatus).
				DecodeJSON(&resp)

			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if strings.Contains(resp.Error, "bad column") || strings.Contains(resp.Error, "127.0.0.1") {
				t.Errorf("internal error text leaked: %q", resp.Error)
			}
		})
	}
}

func TestAPIHandler_ListEvents(t *testing.T) {
	s := testhelpers.NewFakeStore(
		testhelpers.NewEventBuilder().WithID("e1").WithSignature("ET SCAN Nmap").Ago(time.Minute).Build(),
		testhelpers.NewEventBuilder().WithID("e2").WithSignature("ET POLICY curl").Ago(2*time.Minute).Build(),
	).WithEdits(testhelpers.NewTriageEditBuilder("e1").WithStatus(database.TriageStatusResolved).Build())
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	var got []services.EventWithTriage
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/events?search=nmap&limit=10", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains(`"triage":{"status":"Resolved"`).
		DecodeJSON(&got)

	if len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("expected only e1, got %+v", got)
	}

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/events?limit=abc", nil).
		Execute(mux).
		AssertStatus(http.StatusBadRequest)
}

func TestAPIHandler_ListEvents_Empty(t *testing.T) {
	mux := newTestMux(testhelpers.NewFakeStore(), testhelpers.NewFakeModel(""))

	ctx := testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/events", nil).
		Execute(mux).
		AssertStatus(http.StatusOK)
	if body := strings.TrimSpace(ctx.Recorder.Body.String()); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestAPIHandler_AppendTriage(t *testing.T) {
	s := testhelpers.NewFakeStore()
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/events/triage", nil).
		WithRawBody(`{"event_id":"evt-9","status":"False Positive","notes":"internal scanner"}`).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains(`{"success":true}`)

	edits := s.Edits()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].EventID != "evt-9" || edits[0].Status != database.TriageStatusFalsePositive {
		t.Errorf("unexpected edit %+v", edits[0])
	}

	var state struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/events/evt-9/triage", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&state)
	if state.Status != "False Positive" || state.Notes != "internal scanner" {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestAPIHandler_AppendTriage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing event id", `{"status":"Resolved"}`},
		{"missing status", `{"event_id":"evt-1"}`},
		{"unknown status", `{"event_id":"evt-1","status":"Closed"}`},
		{"not json", `event_id=evt-1`},
		{"unknown field", `{"event_id":"evt-1","status":"New","user":"bob"}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testhelpers.NewFakeStore()
			mux := newTestMux(s, testhelpers.NewFakeModel(""))

			var resp api.ErrorResponse
			testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/events/triage", nil).
				WithRawBody(tt.body).
				Execute(mux).
				AssertStatus(http.StatusBadRequest).
				DecodeJSON(&resp)

			if resp.Code != api.CodeMalformedTriage {
				t.Errorf("code = %q, want %q", resp.Code, api.CodeMalformedTriage)
			}
			if n := len(s.Edits()); n != 0 {
				t.Errorf("expected nothing written, got %d edits", n)
			}
		})
	}
}

func TestAPIHandler_GetTriage_Default(t *testing.T) {
	mux := newTestMux(testhelpers.NewFakeStore(), testhelpers.NewFakeModel(""))

	testhelpers.NewHTTPTestContext(t, http.MethodGet, "/api/events/unknown/triage", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains(`"status":"New"`)
}

func TestAPIHandler_GenerateSQL(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		modelErr   error
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "accepted",
			reply:      "```sql\nSELECT signature, count() AS n FROM events GROUP BY signature\n```",
			body:       `{"request_text":"top signatures"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"sql":"SELECT signature, count() AS n FROM events GROUP BY signature"}`,
		},
		{
			name:       "destructive output",
			reply:      "SELECT 1 FROM events; DROP TABLE events",
			body:       `{"request_text":"delete everything"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   sqlguard.ReasonMultipleStatements,
		},
		{
			name:       "no sql",
			reply:      "I cannot do that.",
			body:       `{"request_text":"write a poem"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   sqlguard.ReasonNoSQL,
		},
		{
			name:       "blank request",
			body:       `{"request_text":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   sqlguard.ReasonRequestRequired,
		},
		{
			name:       "model offline",
			modelErr:   offline("llm"),
			body:       `{"request_text":"top signatures"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "llm service offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := testhelpers.NewFakeModel(tt.reply).WithError(tt.modelErr)
			mux := newTestMux(testhelpers.NewFakeStore(), model)

			testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/ai/sql", nil).
				WithRawBody(tt.body).
				Execute(mux).
				AssertStatus(tt.wantStatus).
				AssertBodyContains(tt.wantBody)
		})
	}
}

func TestAPIHandler_ExecuteQuery(t *testing.T) {
	s := testhelpers.NewFakeStore()
	s.QueryRows = []store.Row{
		{Columns: []string{"source_address", "n"}, Values: []interface{}{"1.2.3.4", int64(7)}},
	}
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/db/query", nil).
		WithJSONBody(api.QueryRequest{SQL: "SELECT source_address, count() AS n FROM events GROUP BY source_address;"}).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains(`{"rows":[{"source_address":"1.2.3.4","n":7}]}`)

	if len(s.Queries) != 1 || strings.HasSuffix(s.Queries[0], ";") {
		t.Errorf("expected one normalized statement, got %q", s.Queries)
	}
}

func TestAPIHandler_ExecuteQuery_Errors(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		queryErr   error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "not a read query",
			sql:        "DELETE FROM events",
			wantStatus: http.StatusForbidden,
			wantCode:   api.CodeQueryRejected,
			wantError:  sqlguard.ReasonNotReadQuery,
		},
		{
			name:       "keyword inside comment",
			sql:        "SELECT * FROM events -- then DROP it",
			wantStatus: http.StatusForbidden,
			wantCode:   api.CodeQueryRejected,
			wantError:  "destructive keyword not allowed: DROP",
		},
		{
			name:       "store rejects statement",
			sql:        "SELECT nope FROM events",
			queryErr:   &store.ExecutionError{Message: "Code: 47. DB::Exception: Missing columns: 'nope'", Err: errors.New("exception")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   api.CodeExecution,
			wantError:  "Code: 47. DB::Exception: Missing columns: 'nope'",
		},
		{
			name:       "store offline",
			sql:        "SELECT 1",
			queryErr:   &store.ExecutionError{Message: "connection refused", Err: offline("store")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   api.CodeUnavailable,
			wantError:  "store service offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testhelpers.NewFakeStore()
			s.QueryErr = tt.queryErr
			mux := newTestMux(s, testhelpers.NewFakeModel(""))

			var resp api.ErrorResponse
			testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/db/query", nil).
				WithJSONBody(api.QueryRequest{SQL: tt.sql}).
				Execute(mux).
				AssertStatus(tt.wantStatus).
				DecodeJSON(&resp)

			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if tt.wantStatus == http.StatusForbidden && len(s.Queries) != 0 {
				t.Errorf("rejected statement reached the store: %q", s.Queries)
			}
		})
	}
}

func TestAPIHandler_ExecuteQuery_OfflineKeepsStoreMessage(t *testing.T) {
	s := testhelpers.NewFakeStore()
	s.QueryErr = &store.ExecutionError{Message: "connection refused", Err: offline("store")}
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	var resp api.ErrorResponse
	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/db/query", nil).
		WithJSONBody(api.QueryRequest{SQL: "SELECT 1"}).
		Execute(mux).
		DecodeJSON(&resp)

	if resp.Details["store_message"] != "connection refused" {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestAPIHandler_AnalyzeEvent(t *testing.T) {
	model := testhelpers.NewFakeModel("Port scan from a known scanner. Block at the edge.")
	mux := newTestMux(testhelpers.NewFakeStore(), model)

	body := `{"event":{"id":"e1","source_address":"198.51.100.7","dest_address":"10.0.0.5","dest_port":22,` +
		`"signature":"ET SCAN Nmap","severity":2,"triage":{"status":"New","notes":""}}}`

	var resp api.AnalysisResponse
	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/ai/analyze", nil).
		WithRawBody(body).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&resp)

	if resp.Analysis != "Port scan from a known scanner. Block at the edge." {
		t.Errorf("analysis = %q", resp.Analysis)
	}
	if !strings.Contains(model.Prompts[0], "ET SCAN Nmap") {
		t.Errorf("prompt missing signature: %q", model.Prompts[0])
	}
}

func TestAPIHandler_AnalyzeEvent_Errors(t *testing.T) {
	t.Run("missing event", func(t *testing.T) {
		mux := newTestMux(testhelpers.NewFakeStore(), testhelpers.NewFakeModel(""))
		testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/ai/analyze", nil).
			WithRawBody(`{}`).
			Execute(mux).
			AssertStatus(http.StatusBadRequest).
			AssertBodyContains(api.CodeValidation)
	})

	t.Run("model offline", func(t *testing.T) {
		model := testhelpers.NewFakeModel("").WithError(offline("llm"))
		mux := newTestMux(testhelpers.NewFakeStore(), model)
		testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/ai/analyze", nil).
			WithRawBody(`{"event":{"source_address":"1.2.3.4"}}`).
			Execute(mux).
			AssertStatus(http.StatusServiceUnavailable).
			AssertBodyContains("llm service offline")
	})
}

func TestAPIHandler_Stats(t *testing.T) {
	s := testhelpers.NewFakeStore(
		testhelpers.NewEventBuilder().WithGeo("Germany", "DE").WithProtocol("UDP").WithSeverity(1).Ago(time.Minute).Build(),
		testhelpers.NewEventBuilder().WithGeo("", "").WithProtocol("").WithSeverity(3).Ago(time.Minute).Build(),
	)
	mux := newTestMux(s, testhelpers.NewFakeModel(""))

	tests := []struct {
		path     string
		wantBody string
	}{
		{"/api/stats/map", `[{"country_code":"DE","count":1}]`},
		{"/api/stats/protocols", `{"name":"TCP","value":1}`},
		{"/api/stats/signal-noise", `"signal":`},
		{"/api/stats/traffic", `"time_label":`},
		{"/api/stats/roi", `"total_saved":`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			testhelpers.NewHTTPTestContext(t, http.MethodGet, tt.path, nil).
				Execute(mux).
				AssertStatus(http.StatusOK).
				AssertBodyContains(tt.wantBody)
		})
	}
}

func TestAPIHandler_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(testhelpers.NewFakeStore(), testhelpers.NewFakeModel(""))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/incidents"},
		{http.MethodGet, "/api/events/triage"},
		{http.MethodGet, "/api/db/query"},
		{http.MethodDelete, "/api/events"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			testhelpers.NewHTTPTestContext(t, tt.method, tt.path, nil).
				Execute(mux).
				AssertStatus(http.StatusMethodNotAllowed)
		})
	}
}
