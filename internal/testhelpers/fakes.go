package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/sqlguard"
	"github.com/socdash/socdash/internal/store"
)

// ========================================
// Fake Event Store
// ========================================

// FakeStore is an in-memory store.EventStore. Err, when set, is returned by
// every call; QueryErr only by Query.
type FakeStore struct {
	mu       sync.Mutex
	events   []database.Event
	edits    []database.TriageEdit
	appended int64

	Err       error
	QueryErr  error
	QueryRows []store.Row
	Queries   []string
}

var _ store.EventStore = (*FakeStore)(nil)

// NewFakeStore creates a store holding events
func NewFakeStore(events ...database.Event) *FakeStore {
	return &FakeStore{events: events}
}

// WithError makes every call fail with err
func (f *FakeStore) WithError(err error) *FakeStore {
	f.Err = err
	return f
}

// WithEdits preloads the triage log
func (f *FakeStore) WithEdits(edits ...database.TriageEdit) *FakeStore {
	for _, e := range edits {
		f.appended++
		e.AppendedAt = f.appended
		f.edits = append(f.edits, e)
	}
	return f
}

// Edits returns a copy of the triage log in append order
func (f *FakeStore) Edits() []database.TriageEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.TriageEdit(nil), f.edits...)
}

func (f *FakeStore) ScanEventsSince(ctx context.Context, since time.Time, fn func(database.Event) error) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	events := append([]database.Event(nil), f.events...)
	f.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool { return events[i].ObservedAt.Before(events[j].ObservedAt) })
	for _, e := range events {
		if e.ObservedAt.Before(since) {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakeStore) ListEvents(ctx context.Context, q store.EventQuery) ([]database.Event, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	search := strings.ToLower(q.Search)
	var out []database.Event
	for _, e := range f.events {
		if e.ObservedAt.Before(q.Since) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.SourceAddress), search) &&
			!strings.Contains(strings.ToLower(e.Signature), search) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *FakeStore) TriageEdits(ctx context.Context, eventIDs []string) ([]database.TriageEdit, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	var out []database.TriageEdit
	for _, e := range f.edits {
		if want[e.EventID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeStore) AppendTriageEdit(ctx context.Context, edit *database.TriageEdit) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appended++
	if edit.ID == "" {
		edit.ID = fmt.Sprintf("edit-%d", f.appended)
	}
	edit.AppendedAt = f.appended
	f.edits = append(f.edits, *edit)
	return nil
}

func (f *FakeStore) Query(ctx context.Context, stmt sqlguard.Accepted) ([]store.Row, error) {
	if stmt.IsZero() {
		return nil, store.ErrNotValidated
	}
	f.mu.Lock()
	f.Queries = append(f.Queries, stmt.SQL())
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if f.QueryRows == nil {
		return []store.Row{}, nil
	}
	return f.QueryRows, nil
}

func (f *FakeStore) CountBy(ctx context.Context, since time.Time, column string) ([]store.Bucket, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if !store.IsCountable(column) {
		return nil, fmt.Errorf("column %q cannot be counted", column)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]store.Count{}
	for _, e := range f.events {
		if e.ObservedAt.Before(since) {
			continue
		}
		counts[columnValue(e, column)]++
	}
	out := make([]store.Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, store.Bucket{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (f *FakeStore) Ping(ctx context.Context) error {
	return f.Err
}

func columnValue(e database.Event, column string) string {
	switch column {
	case "geo_country":
		return e.GeoCountry
	case "geo_country_code":
		return e.GeoCountryCode
	case "protocol":
		return e.Protocol
	case "severity":
		return fmt.Sprint(e.Severity)
	case "signature":
		return e.Signature
	case "source_address":
		return e.SourceAddress
	case "category":
		return e.Category
	}
	return ""
}

// ========================================
// Fake Language Model
// ========================================

// FakeModel returns a canned reply and records every prompt
type FakeModel struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
}

// NewFakeModel creates a model answering every prompt with reply
func NewFakeModel(reply string) *FakeModel {
	return &FakeModel{Reply: reply}
}

// WithError makes every call fail with err
func (m *FakeModel) WithError(err error) *FakeModel {
	m.Err = err
	return m
}

func (m *FakeModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns how many prompts the model received
func (m *FakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
