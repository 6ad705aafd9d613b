package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/store"
)

// Stats windows
const (
	statsWindow    = 24 * time.Hour
	timelineWindow = time.Hour
	topProtocols   = 5
)

// CountryCount is the number of recent events from one country
type CountryCount struct {
	CountryCode string      `json:"country_code"`
	Count       store.Count `json:"count"`
}

// ProtocolCount is the number of recent events for one protocol
type ProtocolCount struct {
	Name  string      `json:"name"`
	Value store.Count `json:"value"`
}

// TimelinePoint counts events in one minute
type TimelinePoint struct {
	Time   time.Time `json:"time"`
	Label  string    `json:"time_label"`
	Count  int64     `json:"count"`
	Signal int64     `json:"signal"`
	Noise  int64     `json:"noise"`
}

// ROIItem is the estimated cost avoided for one alert category
type ROIItem struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Saved    float64 `json:"saved"`
}

// ROIReport summarises the estimated cost avoided over the stats window
type ROIReport struct {
	TotalSaved float64   `json:"total_saved"`
	Breakdown  []ROIItem `json:"breakdown"`
}

// Estimated incident cost per alert by category, falling back to severity
var (
	categoryCost = map[string]float64{
		"A Network Trojan was detected": 15000,
		"Potentially Bad Traffic":       500,
		"Attempted Information Leak":    3500,
		"Web Application Attack":        5000,
	}
	severityCost = map[int]float64{1: 10000, 2: 1000}
	defaultCost  = 100.0
)

// StatsService computes dashboard statistics
type StatsService struct {
	store store.EventStore
	now   func() time.Time
}

// NewStatsService creates a stats service
func NewStatsService(s store.EventStore) *StatsService {
	return &StatsService{store: s, now: time.Now}
}

// Countries returns per-country event counts for the map. Events without a
// known country are left out.
func (s *StatsService) Countries(ctx context.Context) ([]CountryCount, error) {
	buckets, err := s.store.CountBy(ctx, s.now().Add(-statsWindow), "geo_country_code")
	if err != nil {
		return nil, fmt.Errorf("failed to count countries: %w", err)
	}

	merged := map[string]store.Count{}
	for _, b := range buckets {
		code := database.NormalizeCountryCode(b.Key)
		if code == database.UnknownCountryCode {
			continue
		}
		merged[code] += b.Count
	}

	out := make([]CountryCount, 0, len(merged))
	for code, n := range merged {
		out = append(out, CountryCount{CountryCode: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CountryCode < out[j].CountryCode
	})
	return out, nil
}

// Protocols returns the most common protocols. Events with no protocol are
// counted as TCP.
func (s *StatsService) Protocols(ctx context.Context) ([]ProtocolCount, error) {
	buckets, err := s.store.CountBy(ctx, s.now().Add(-statsWindow), "protocol")
	if err != nil {
		return nil, fmt.Errorf("failed to count protocols: %w", err)
	}

	merged := map[string]store.Count{}
	for _, b := range buckets {
		name := b.Key
		if name == "" {
			name = "TCP"
		}
		merged[name] += b.Count
	}

	out := make([]ProtocolCount, 0, len(merged))
	for name, n := range merged {
		out = append(out, ProtocolCount{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topProtocols {
		out = out[:topProtocols]
	}
	return out, nil
}

// Timeline returns per-minute event counts for the last hour, one point per
// minute including empty ones. Severity 1 and 2 count as signal, anything
// else as noise.
func (s *StatsService) Timeline(ctx context.Context) ([]TimelinePoint, error) {
	end := s.now().UTC().Truncate(time.Minute)
	start := end.Add(-timelineWindow)

	points := make([]TimelinePoint, 0, int(timelineWindow/time.Minute)+1)
	for t := start; !t.After(end); t = t.Add(time.Minute) {
		points = append(points, TimelinePoint{Time: t, Label: t.Format("15:04")})
	}

	err := s.store.ScanEventsSince(ctx, start, func(e database.Event) error {
		idx := int(e.ObservedAt.UTC().Truncate(time.Minute).Sub(start) / time.Minute)
		if idx < 0 || idx >= len(points) {
			return nil
		}
		points[idx].Count++
		if e.Severity <= 2 {
			points[idx].Signal++
		} else {
			points[idx].Noise++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}
	return points, nil
}

// ROI estimates the incident cost avoided by the alerts of the stats window
func (s *StatsService) ROI(ctx context.Context) (*ROIReport, error) {
	counts := map[string]int64{}
	saved := map[string]float64{}

	err := s.store.ScanEventsSince(ctx, s.now().Add(-statsWindow), func(e database.Event) error {
		if e.Severity <= 0 {
			return nil
		}
		category := e.Category
		if category == "" {
			category = "Unknown Threat"
		}
		counts[category]++
		saved[category] += costOf(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute ROI: %w", err)
	}

	report := &ROIReport{Breakdown: make([]ROIItem, 0, len(counts))}
	for category, n := range counts {
		report.Breakdown = append(report.Breakdown, ROIItem{Category: category, Count: n, Saved: saved[category]})
		report.TotalSaved += saved[category]
	}
	sort.Slice(report.Breakdown, func(i, j int) bool {
		if report.Breakdown[i].Saved != report.Breakdown[j].Saved {
			return report.Breakdown[i].Saved > report.Breakdown[j].Saved
		}
		return report.Breakdown[i].Category < report.Breakdown[j].Category
	})
	return report, nil
}

func costOf(e database.Event) float64 {
	if c, ok := categoryCost[e.Category]; ok {
		return c
	}
	if c, ok := severityCost[e.Severity]; ok {
		return c
	}
	return defaultCost
}
