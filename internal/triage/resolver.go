// Package triage derives the current analyst state of an event from its
// append-only edit log.
package triage

import (
	"fmt"
	"strings"

	"github.com/socdash/socdash/internal/database"
)

// Status is an analyst-assigned triage status
type Status = database.TriageStatus

// State is the resolved triage state of one event
type State struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

// Default is the state of an event nobody has touched yet
func Default() State {
	return State{Status: database.TriageStatusNew}
}

// ParseStatus accepts the wire names of the four statuses, ignoring case
// and the space in "False Positive".
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, status := range database.ValidTriageStatuses() {
		if key == strings.ToLower(strings.ReplaceAll(string(status), " ", "")) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown triage status %q", s)
}

// Resolve returns the state of eventID given the triage log in insertion
// order. The edit with the greatest EditedAt wins; on equal timestamps the
// edit appended later wins. Edits for other events are ignored.
func Resolve(eventID string, edits []database.TriageEdit) State {
	var latest *database.TriageEdit
	for i := range edits {
		e := &edits[i]
		if e.EventID != eventID {
			continue
		}
		if latest == nil || !e.EditedAt.Before(latest.EditedAt) {
			latest = e
		}
	}
	if latest == nil {
		return Default()
	}
	return State{Status: latest.Status, Notes: latest.Notes}
}

// ResolveAll applies Resolve to every event present in edits in one pass.
// Events absent from the result are in the Default state.
func ResolveAll(edits []database.TriageEdit) map[string]State {
	latest := make(map[string]*database.TriageEdit)
	for i := range edits {
		e := &edits[i]
		if cur, ok := latest[e.EventID]; !ok || !e.EditedAt.Before(cur.EditedAt) {
			latest[e.EventID] = e
		}
	}

	states := make(map[string]State, len(latest))
	for id, e := range latest {
		states[id] = State{Status: e.Status, Notes: e.Notes}
	}
	return states
}

// Lookup returns the state for eventID from a ResolveAll result
func Lookup(states map[string]State, eventID string) State {
	if s, ok := states[eventID]; ok {
		return s
	}
	return Default()
}
