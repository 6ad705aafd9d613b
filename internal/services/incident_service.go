package services

import (
	"context"
	"fmt"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/incidents"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/store"
)

// IncidentService builds incident lists from one scan of the window
type IncidentService struct {
	store         store.EventStore
	defaultWindow time.Duration
	maxWindow     time.Duration
	limit         int
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewIncidentService creates an incident service. limit caps the number of
// incidents returned; zero means no cap.
func NewIncidentService(s store.EventStore, defaultWindow, maxWindow time.Duration, limit int, m *metrics.Metrics) *IncidentService {
	return &IncidentService{
		store:         s,
		defaultWindow: defaultWindow,
		maxWindow:     maxWindow,
		limit:         limit,
		metrics:       m,
		now:           time.Now,
	}
}

// ParseWindow validates a window query parameter, defaulting when empty
func (s *IncidentService) ParseWindow(raw string) (time.Duration, error) {
	return incidents.ParseWindow(raw, s.defaultWindow, s.maxWindow)
}

// List returns the incidents of the last window, most recently active first
func (s *IncidentService) List(ctx context.Context, window time.Duration) ([]incidents.Incident, error) {
	if window <= 0 {
		window = s.defaultWindow
	}
	since := s.now().Add(-window)

	agg := incidents.NewAggregator(since)
	err := s.store.ScanEventsSince(ctx, since, func(e database.Event) error {
		agg.Add(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate incidents: %w", err)
	}

	result := agg.Incidents()
	if s.limit > 0 && len(result) > s.limit {
		result = result[:s.limit]
	}
	s.metrics.ObserveIncidents(len(result))
	return result, nil
}
