package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/sqlguard"
	"github.com/socdash/socdash/internal/upstream"
)

// DefaultTimeout bounds every store call when no timeout is configured
const DefaultTimeout = 30 * time.Second

// GormStore implements EventStore on top of gorm
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewGormStore wraps db. A non-positive timeout selects DefaultTimeout.
func NewGormStore(db *gorm.DB, timeout time.Duration, m *metrics.Metrics) *GormStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormStore{db: db, timeout: timeout, metrics: m}
}

func (s *GormStore) begin(ctx context.Context, operation string) (*gorm.DB, func()) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	return s.db.WithContext(ctx), func() {
		cancel()
		s.metrics.ObserveStore(operation, time.Since(start))
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, upstream.Classify(serviceName, err))
}

// ScanEventsSince streams events in (observed_at, id) order
func (s *GormStore) ScanEventsSince(ctx context.Context, since time.Time, fn func(database.Event) error) error {
	db, done := s.begin(ctx, "scan_events")
	defer done()

	rows, err := db.Model(&database.Event{}).
		Where("observed_at >= ?", since.UTC()).
		Order("observed_at").
		Order("id").
		Rows()
	if err != nil {
		return wrap("scan events", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e database.Event
		if err := db.ScanRows(rows, &e); err != nil {
			return wrap("scan event", err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return wrap("scan events", err)
	}
	return nil
}

// ListEvents returns recent events, newest first
func (s *GormStore) ListEvents(ctx context.Context, q EventQuery) ([]database.Event, error) {
	db, done := s.begin(ctx, "list_events")
	defer done()

	tx := db.Model(&database.Event{}).Where("observed_at >= ?", q.Since.UTC())
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where("LOWER(source_address) LIKE ? OR LOWER(signature) LIKE ?", pattern, pattern)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var events []database.Event
	if err := tx.Order("observed_at DESC").Order("id").Find(&events).Error; err != nil {
		return nil, wrap("list events", err)
	}
	return events, nil
}

// TriageEdits returns edits for eventIDs ordered by append time
func (s *GormStore) TriageEdits(ctx context.Context, eventIDs []string) ([]database.TriageEdit, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	db, done := s.begin(ctx, "triage_edits")
	defer done()

	var edits []database.TriageEdit
	err := db.Where("event_id IN ?", eventIDs).
		Order("appended_at").
		Order("id").
		Find(&edits).Error
	if err != nil {
		return nil, wrap("load triage edits", err)
	}
	return edits, nil
}

// AppendTriageEdit inserts edit, assigning its ID and append time when unset
func (s *GormStore) AppendTriageEdit(ctx context.Context, edit *database.TriageEdit) error {
	if edit.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate triage edit id: %w", err)
		}
		edit.ID = id.String()
	}
	if edit.AppendedAt == 0 {
		edit.AppendedAt = time.Now().UnixNano()
	}
	edit.EditedAt = edit.EditedAt.UTC()

	db, done := s.begin(ctx, "append_triage")
	defer done()

	if err := db.Create(edit).Error; err != nil {
		return wrap("append triage edit", err)
	}
	return nil
}

// Query runs a validated statement. Failures are *ExecutionError.
func (s *GormStore) Query(ctx context.Context, stmt sqlguard.Accepted) ([]Row, error) {
	if stmt.IsZero() {
		return nil, ErrNotValidated
	}

	db, done := s.begin(ctx, "query")
	defer done()

	rows, err := db.Raw(stmt.SQL()).Rows()
	if err != nil {
		return nil, newExecutionError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, newExecutionError(err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, newExecutionError(err)
		}
		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result = append(result, Row{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, newExecutionError(err)
	}
	return result, nil
}

// CountBy groups recent events by column, largest groups first
func (s *GormStore) CountBy(ctx context.Context, since time.Time, column string) ([]Bucket, error) {
	if !IsCountable(column) {
		return nil, fmt.Errorf("column %q cannot be counted", column)
	}

	db, done := s.begin(ctx, "count_by")
	defer done()

	rows, err := db.Model(&database.Event{}).
		Select(column+" AS bucket, COUNT(*) AS total").
		Where("observed_at >= ?", since.UTC()).
		Group(column).
		Order("total DESC").
		Order("bucket").
		Rows()
	if err != nil {
		return nil, wrap("count events", err)
	}
	defer rows.Close()

	buckets := make([]Bucket, 0)
	for rows.Next() {
		var key interface{}
		var b Bucket
		if err := rows.Scan(&key, &b.Count); err != nil {
			return nil, wrap("count events", err)
		}
		b.Key = bucketKey(key)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("count events", err)
	}
	return buckets, nil
}

// InsertEvents stores events in batches. Only used to seed local stores.
func (s *GormStore) InsertEvents(ctx context.Context, events []database.Event) error {
	db, done := s.begin(ctx, "insert_events")
	defer done()

	if err := db.CreateInBatches(events, 500).Error; err != nil {
		return wrap("insert events", err)
	}
	return nil
}

// Migrate creates the store's tables for the given driver
func (s *GormStore) Migrate(driver string) error {
	return database.AutoMigrate(s.db, driver)
}

// Close releases the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("get database handle", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return upstream.Unavailable(serviceName, err)
	}
	return nil
}

func bucketKey(v interface{}) string {
	switch val := normalizeValue(v).(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
