// Package incidents collapses the raw alert stream into incidents keyed by
// source address and signature.
package incidents

import (
	"sort"
	"time"

	"github.com/socdash/socdash/internal/database"
)

// Incident is a group of events sharing a source address and signature
type Incident struct {
	SourceAddress  string    `json:"source_address"`
	Signature      string    `json:"signature"`
	Count          int64     `json:"count"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	Severity       int       `json:"severity"`
	GeoCountry     string    `json:"geo_country"`
	GeoCountryCode string    `json:"geo_country_code"`
}

type groupKey struct {
	source    string
	signature string
}

// Aggregator folds events into incidents. It is not safe for concurrent use;
// each request builds its own.
type Aggregator struct {
	since  time.Time
	groups map[groupKey]*Incident
}

// NewAggregator returns an aggregator that ignores events observed before since
func NewAggregator(since time.Time) *Aggregator {
	return &Aggregator{
		since:  since,
		groups: make(map[groupKey]*Incident),
	}
}

// Add folds one event into its incident. Events before the window start are
// skipped; an event observed exactly at the start is counted.
func (a *Aggregator) Add(e database.Event) {
	if e.ObservedAt.Before(a.since) {
		return
	}

	key := groupKey{source: e.SourceAddress, signature: e.Signature}
	inc, ok := a.groups[key]
	if !ok {
		country, code := geoOf(e)
		a.groups[key] = &Incident{
			SourceAddress:  e.SourceAddress,
			Signature:      e.Signature,
			Count:          1,
			FirstSeen:      e.ObservedAt,
			LastSeen:       e.ObservedAt,
			Severity:       e.Severity,
			GeoCountry:     country,
			GeoCountryCode: code,
		}
		return
	}

	inc.Count++
	if e.ObservedAt.Before(inc.FirstSeen) {
		inc.FirstSeen = e.ObservedAt
	}
	if e.ObservedAt.After(inc.LastSeen) {
		inc.LastSeen = e.ObservedAt
		inc.GeoCountry, inc.GeoCountryCode = geoOf(e)
	}
	if e.Severity < inc.Severity {
		inc.Severity = e.Severity
	}
}

// Len returns the number of incidents accumulated so far
func (a *Aggregator) Len() int {
	return len(a.groups)
}

// Incidents returns the accumulated incidents, most recently active first.
// Ties on LastSeen are ordered by source address, then signature.
func (a *Aggregator) Incidents() []Incident {
	out := make([]Incident, 0, len(a.groups))
	for _, inc := range a.groups {
		out = append(out, *inc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		if out[i].SourceAddress != out[j].SourceAddress {
			return out[i].SourceAddress < out[j].SourceAddress
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}

// Aggregate groups events observed at or after since
func Aggregate(events []database.Event, since time.Time) []Incident {
	agg := NewAggregator(since)
	for _, e := range events {
		agg.Add(e)
	}
	return agg.Incidents()
}

func geoOf(e database.Event) (string, string) {
	country := e.GeoCountry
	if country == "" {
		country = database.UnknownCountry
	}
	return country, database.NormalizeCountryCode(e.GeoCountryCode)
}
