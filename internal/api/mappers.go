package api

import (
	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/store"
)

// AnalyzeEventToEvent converts a dashboard event to a database Event.
// The embedded triage state is dropped.
func AnalyzeEventToEvent(e AnalyzeEvent) database.Event {
	return database.Event{
		ID:             e.ID,
		ObservedAt:     e.ObservedAt,
		SourceAddress:  e.SourceAddress,
		SourcePort:     e.SourcePort,
		DestAddress:    e.DestAddress,
		DestPort:       e.DestPort,
		Protocol:       e.Protocol,
		Signature:      e.Signature,
		Severity:       e.Severity,
		Category:       e.Category,
		GeoCountry:     e.GeoCountry,
		GeoCountryCode: e.GeoCountryCode,
		RawPayload:     e.RawPayload,
	}
}

// RowsToResponse wraps query rows, encoding an empty result as [].
func RowsToResponse(rows []store.Row) QueryResponse {
	if rows == nil {
		rows = []store.Row{}
	}
	return QueryResponse{Rows: rows}
}
