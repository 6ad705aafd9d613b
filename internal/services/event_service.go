package services

import (
	"context"
	"fmt"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/triage"
)

// EventWithTriage is an event together with its resolved triage state
type EventWithTriage struct {
	database.Event
	Triage triage.State `json:"triage"`
}

// EventService lists recent events with their triage state embedded
type EventService struct {
	store    store.EventStore
	window   time.Duration
	maxLimit int
	now      func() time.Time
}

// NewEventService creates an event service listing the last window of events,
// at most maxLimit per call
func NewEventService(s store.EventStore, window time.Duration, maxLimit int) *EventService {
	return &EventService{
		store:    s,
		window:   window,
		maxLimit: maxLimit,
		now:      time.Now,
	}
}

// List returns recent events matching search, newest first. limit is clamped
// to the configured maximum; zero selects the maximum.
func (s *EventService) List(ctx context.Context, search string, limit int) ([]EventWithTriage, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	events, err := s.store.ListEvents(ctx, store.EventQuery{
		Since:  s.now().Add(-s.window),
		Search: search,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	edits, err := s.store.TriageEdits(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load triage state: %w", err)
	}
	states := triage.ResolveAll(edits)

	result := make([]EventWithTriage, len(events))
	for i, e := range events {
		result[i] = EventWithTriage{Event: e, Triage: triage.Lookup(states, e.ID)}
	}
	return result, nil
}
