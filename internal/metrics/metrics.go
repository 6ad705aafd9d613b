package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeOK       = "ok"
)

// Metrics holds the Prometheus collectors for the API server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SQLCandidates     *prometheus.CounterVec
	QueryExecutions   *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	StoreDuration     *prometheus.HistogramVec
	TriageEdits       prometheus.Counter
	IncidentsReturned prometheus.Histogram
	LiveClients       prometheus.Gauge
}

// NewMetrics registers all collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SQLCandidates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socdash_sql_candidates_total",
			Help: "Generated SQL candidates by validation outcome",
		}, []string{"outcome"}),
		QueryExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socdash_query_executions_total",
			Help: "Validated statements executed against the event store",
		}, []string{"outcome"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "socdash_query_duration_seconds",
			Help:    "Execution time of validated statements",
			Buckets: prometheus.DefBuckets,
		}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socdash_store_operation_duration_seconds",
			Help:    "Event store call latency by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		TriageEdits: factory.NewCounter(prometheus.CounterOpts{
			Name: "socdash_triage_edits_total",
			Help: "Triage edits appended",
		}),
		IncidentsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "socdash_incidents_returned",
			Help:    "Incidents per aggregation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		LiveClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socdash_live_clients",
			Help: "Connected live incident feed clients",
		}),
	}
}

// ObserveCandidate counts one pipeline outcome
func (m *Metrics) ObserveCandidate(outcome string) {
	if m == nil {
		return
	}
	m.SQLCandidates.WithLabelValues(outcome).Inc()
}

// ObserveQuery records one executed statement
func (m *Metrics) ObserveQuery(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueryExecutions.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(elapsed.Seconds())
}

// ObserveStore records the latency of one store call
func (m *Metrics) ObserveStore(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncTriageEdits counts an appended triage edit
func (m *Metrics) IncTriageEdits() {
	if m == nil {
		return
	}
	m.TriageEdits.Inc()
}

// ObserveIncidents records how many incidents one aggregation produced
func (m *Metrics) ObserveIncidents(n int) {
	if m == nil {
		return
	}
	m.IncidentsReturned.Observe(float64(n))
}

// AddLiveClients adjusts the live client gauge by delta
func (m *Metrics) AddLiveClients(delta float64) {
	if m == nil {
		return
	}
	m.LiveClients.Add(delta)
}
