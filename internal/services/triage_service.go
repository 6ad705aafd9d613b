package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/triage"
)

// ErrMalformedTriage is returned when an edit lacks an event id or a valid status
var ErrMalformedTriage = errors.New("malformed triage request")

// TriageService appends to and resolves the triage log
type TriageService struct {
	store   store.EventStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTriageService creates a triage service
func NewTriageService(s store.EventStore, m *metrics.Metrics) *TriageService {
	return &TriageService{store: s, metrics: m, now: time.Now}
}

// Append records a new triage edit for eventID. Nothing is written when the
// edit is malformed.
func (s *TriageService) Append(ctx context.Context, eventID string, status triage.Status, notes string) (*database.TriageEdit, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", ErrMalformedTriage)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedTriage, status)
	}

	edit := &database.TriageEdit{
		EventID:  eventID,
		Status:   status,
		Notes:    notes,
		EditedAt: s.now().UTC(),
	}
	if err := s.store.AppendTriageEdit(ctx, edit); err != nil {
		return nil, fmt.Errorf("failed to append triage edit: %w", err)
	}
	s.metrics.IncTriageEdits()
	return edit, nil
}

// State returns the current triage state of eventID
func (s *TriageService) State(ctx context.Context, eventID string) (triage.State, error) {
	edits, err := s.store.TriageEdits(ctx, []string{eventID})
	if err != nil {
		return triage.State{}, fmt.Errorf("failed to load triage state: %w", err)
	}
	return triage.Resolve(eventID, edits), nil
}
