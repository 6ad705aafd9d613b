package testhelpers

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/socdash/socdash/internal/database"
)

var eventSeq atomic.Int64

// ========================================
// Event Builder
// ========================================

// EventBuilder builds Event instances for testing
type EventBuilder struct {
	event database.Event
}

// NewEventBuilder creates a new event builder with defaults
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		event: database.Event{
			ID:             fmt.Sprintf("evt-%d", eventSeq.Add(1)),
			ObservedAt:     time.Now().UTC(),
			SourceAddress:  "203.0.113.10",
			SourcePort:     44321,
			DestAddress:    "10.0.0.5",
			DestPort:       22,
			Protocol:       "TCP",
			Signature:      "ET SCAN Potential SSH Scan",
			Severity:       2,
			Category:       "Attempted Information Leak",
			GeoCountry:     "United States",
			GeoCountryCode: "US",
		},
	}
}

// WithID sets the event ID
func (b *EventBuilder) WithID(id string) *EventBuilder {
	b.event.ID = id
	return b
}

// At sets the observation time
func (b *EventBuilder) At(t time.Time) *EventBuilder {
	b.event.ObservedAt = t
	return b
}

// Ago sets the observation time relative to now
func (b *EventBuilder) Ago(d time.Duration) *EventBuilder {
	b.event.ObservedAt = time.Now().UTC().Add(-d)
	return b
}

// WithSource sets the source address
func (b *EventBuilder) WithSource(addr string) *EventBuilder {
	b.event.SourceAddress = addr
	return b
}

// WithSignature sets the signature
func (b *EventBuilder) WithSignature(sig string) *EventBuilder {
	b.event.Signature = sig
	return b
}

// WithSeverity sets the severity
func (b *EventBuilder) WithSeverity(sev int) *EventBuilder {
	b.event.Severity = sev
	return b
}

// WithProtocol sets the protocol
func (b *EventBuilder) WithProtocol(proto string) *EventBuilder {
	b.event.Protocol = proto
	return b
}

// WithCategory sets the category
func (b *EventBuilder) WithCategory(category string) *EventBuilder {
	b.event.Category = category
	return b
}

// WithGeo sets the country name and code
func (b *EventBuilder) WithGeo(country, code string) *EventBuilder {
	b.event.GeoCountry = country
	b.event.GeoCountryCode = code
	return b
}

// Build returns the built event
func (b *EventBuilder) Build() database.Event {
	return b.event
}

// ========================================
// Triage Edit Builder
// ========================================

// TriageEditBuilder builds TriageEdit instances for testing
type TriageEditBuilder struct {
	edit database.TriageEdit
}

// NewTriageEditBuilder creates a builder for an edit of eventID
func NewTriageEditBuilder(eventID string) *TriageEditBuilder {
	return &TriageEditBuilder{
		edit: database.TriageEdit{
			EventID:  eventID,
			Status:   database.TriageStatusInvestigating,
			EditedAt: time.Now().UTC(),
		},
	}
}

// WithStatus sets the status
func (b *TriageEditBuilder) WithStatus(status database.TriageStatus) *TriageEditBuilder {
	b.edit.Status = status
	return b
}

// WithNotes sets the analyst notes
func (b *TriageEditBuilder) WithNotes(notes string) *TriageEditBuilder {
	b.edit.Notes = notes
	return b
}

// At sets the edit time
func (b *TriageEditBuilder) At(t time.Time) *TriageEditBuilder {
	b.edit.EditedAt = t
	return b
}

// Build returns the built edit
func (b *TriageEditBuilder) Build() database.TriageEdit {
	return b.edit
}
