package database

import (
	"strings"
	"time"
)

// Event is a single IDS alert as written by the sensor pipeline.
// Events are immutable once stored.
type Event struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ObservedAt     time.Time `gorm:"not null;index" json:"observed_at"`
	SourceAddress  string    `gorm:"type:varchar(64);index" json:"source_address"`
	SourcePort     int       `json:"source_port"`
	DestAddress    string    `gorm:"type:varchar(64)" json:"dest_address"`
	DestPort       int       `json:"dest_port"`
	Protocol       string    `gorm:"type:varchar(16)" json:"protocol"`
	Signature      string    `gorm:"type:varchar(512)" json:"signature"`
	Severity       int       `json:"severity"` // 1 = Critical, higher is less severe
	Category       string    `gorm:"type:varchar(255)" json:"category,omitempty"`
	GeoCountry     string    `gorm:"type:varchar(128)" json:"geo_country,omitempty"`
	GeoCountryCode string    `gorm:"type:varchar(8)" json:"geo_country_code,omitempty"`
	RawPayload     string    `gorm:"type:text" json:"raw_payload,omitempty"`
}

// TableName pins the table name shared with the sensor pipeline
func (Event) TableName() string {
	return "events"
}

// TriageStatus is the analyst-assigned state of an event
type TriageStatus string

const (
	TriageStatusNew           TriageStatus = "New"
	TriageStatusInvestigating TriageStatus = "Investigating"
	TriageStatusFalsePositive TriageStatus = "False Positive"
	TriageStatusResolved      TriageStatus = "Resolved"
)

// ValidTriageStatuses returns all accepted triage statuses
func ValidTriageStatuses() []TriageStatus {
	return []TriageStatus{
		TriageStatusNew,
		TriageStatusInvestigating,
		TriageStatusFalsePositive,
		TriageStatusResolved,
	}
}

// IsValid reports whether s is one of the known statuses
func (s TriageStatus) IsValid() bool {
	for _, v := range ValidTriageStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// TriageEdit is one entry of the append-only triage log. Rows are never
// updated; the current state of an event is derived from its edits.
type TriageEdit struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"` // UUIDv7
	EventID    string       `gorm:"type:varchar(36);not null;index" json:"event_id"`
	Status     TriageStatus `gorm:"type:varchar(32);not null" json:"status"`
	Notes      string       `gorm:"type:text" json:"notes"`
	EditedAt   time.Time    `gorm:"not null" json:"edited_at"`
	AppendedAt int64        `gorm:"not null;index" json:"-"` // unix nanoseconds, assigned on append
}

// TableName pins the triage log table name
func (TriageEdit) TableName() string {
	return "alert_triage"
}

// NormalizeCountryCode upper-cases a two-letter code and maps blanks to "XX"
func NormalizeCountryCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return UnknownCountryCode
	}
	return code
}

const (
	// UnknownCountry is reported when an event carries no geo information
	UnknownCountry = "Unknown"
	// UnknownCountryCode is the sentinel code paired with UnknownCountry
	UnknownCountryCode = "XX"
)
