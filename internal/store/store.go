// Package store is the port to the event store: the events table written by
// the sensor pipeline and the append-only triage log.
package store

import (
	"context"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/sqlguard"
)

// EventQuery selects recent events for the event list
type EventQuery struct {
	Since  time.Time
	Search string // case-insensitive substring of source address or signature
	Limit  int
}

// EventStore is everything the API needs from the event store
type EventStore interface {
	// ScanEventsSince calls fn for every event observed at or after since,
	// oldest first. A non-nil error from fn stops the scan and is returned.
	ScanEventsSince(ctx context.Context, since time.Time, fn func(database.Event) error) error

	// ListEvents returns matching events, newest first
	ListEvents(ctx context.Context, q EventQuery) ([]database.Event, error)

	// TriageEdits returns every edit for the given events in append order
	TriageEdits(ctx context.Context, eventIDs []string) ([]database.TriageEdit, error)

	// AppendTriageEdit inserts one edit
	AppendTriageEdit(ctx context.Context, edit *database.TriageEdit) error

	// Query runs a validated read statement and returns its rows unchanged
	Query(ctx context.Context, stmt sqlguard.Accepted) ([]Row, error)

	// CountBy counts events observed at or after since, grouped by column
	CountBy(ctx context.Context, since time.Time, column string) ([]Bucket, error)

	Ping(ctx context.Context) error
}

// Columns that CountBy may group on
var countableColumns = map[string]bool{
	"geo_country":      true,
	"geo_country_code": true,
	"protocol":         true,
	"severity":         true,
	"signature":        true,
	"source_address":   true,
	"category":         true,
}

// IsCountable reports whether column can be used with CountBy
func IsCountable(column string) bool {
	return countableColumns[column]
}
