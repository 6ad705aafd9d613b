package triage

import (
	"math/rand"
	"testing"
	"time"

	"github.com/socdash/socdash/internal/database"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func edit(eventID string, at int, status database.TriageStatus, notes string) database.TriageEdit {
	return database.TriageEdit{
		EventID:  eventID,
		Status:   status,
		Notes:    notes,
		EditedAt: t0.Add(time.Duration(at) * time.Minute),
	}
}

func TestResolve_LastWriteWins(t *testing.T) {
	edits := []database.TriageEdit{
		edit("E", 1, database.TriageStatusNew, ""),
		edit("E", 5, database.TriageStatusResolved, "closed out"),
		edit("E", 3, database.TriageStatusInvestigating, "looking"),
	}

	got := Resolve("E", edits)
	if got.Status != database.TriageStatusResolved {
		t.Errorf("expected status Resolved, got %s", got.Status)
	}
	if got.Notes != "closed out" {
		t.Errorf("expected notes 'closed out', got '%s'", got.Notes)
	}
}

func TestResolve_Default(t *testing.T) {
	edits := []database.TriageEdit{edit("other", 1, database.TriageStatusResolved, "x")}

	for _, log := range [][]database.TriageEdit{nil, edits} {
		got := Resolve("E", log)
		if got != Default() {
			t.Errorf("expected default state, got %+v", got)
		}
		if got.Status != database.TriageStatusNew || got.Notes != "" {
			t.Errorf("expected New with empty notes, got %+v", got)
		}
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	edits := []database.TriageEdit{
		edit("E", 2, database.TriageStatusInvestigating, "a"),
		edit("E", 9, database.TriageStatusFalsePositive, "b"),
		edit("E", 4, database.TriageStatusResolved, "c"),
		edit("E", 7, database.TriageStatusNew, "d"),
		edit("F", 10, database.TriageStatusResolved, "other event"),
	}
	want := Resolve("E", edits)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]database.TriageEdit(nil), edits...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Resolve("E", shuffled); got != want {
			t.Fatalf("permutation %d: expected %+v, got %+v", i, want, got)
		}
	}
	if want.Status != database.TriageStatusFalsePositive {
		t.Errorf("expected False Positive, got %s", want.Status)
	}
}

func TestResolve_TieGoesToLaterAppend(t *testing.T) {
	edits := []database.TriageEdit{
		edit("E", 5, database.TriageStatusInvestigating, "first"),
		edit("E", 5, database.TriageStatusResolved, "second"),
	}
	if got := Resolve("E", edits); got.Notes != "second" {
		t.Errorf("expected later append to win tie, got %+v", got)
	}
}

func TestResolve_DuplicateAppendIsIdempotent(t *testing.T) {
	e := edit("E", 3, database.TriageStatusResolved, "done")
	once := Resolve("E", []database.TriageEdit{e})
	twice := Resolve("E", []database.TriageEdit{e, e})
	if once != twice {
		t.Errorf("expected same state after duplicate append, got %+v vs %+v", once, twice)
	}
}

func TestResolveAll(t *testing.T) {
	edits := []database.TriageEdit{
		edit("A", 1, database.TriageStatusInvestigating, ""),
		edit("B", 2, database.TriageStatusFalsePositive, "scanner"),
		edit("A", 3, database.TriageStatusResolved, "fixed"),
		edit("B", 2, database.TriageStatusResolved, "tie"),
	}

	states := ResolveAll(edits)
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	for _, id := range []string{"A", "B"} {
		if states[id] != Resolve(id, edits) {
			t.Errorf("ResolveAll[%s] = %+v, Resolve = %+v", id, states[id], Resolve(id, edits))
		}
	}
	if got := Lookup(states, "missing"); got != Default() {
		t.Errorf("expected default for missing event, got %+v", got)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    database.TriageStatus
		wantErr bool
	}{
		{"New", database.TriageStatusNew, false},
		{"investigating", database.TriageStatusInvestigating, false},
		{"False Positive", database.TriageStatusFalsePositive, false},
		{"FalsePositive", database.TriageStatusFalsePositive, false},
		{" RESOLVED ", database.TriageStatusResolved, false},
		{"Closed", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
