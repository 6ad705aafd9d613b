// Package seed generates demo IDS events for local stores.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/socdash/socdash/internal/database"
)

type signature struct {
	name     string
	category string
	severity int
}

var signatures = []signature{
	{"ET MALWARE Cobalt Strike Beacon Observed", "A Network Trojan was detected", 1},
	{"ET EXPLOIT Apache Log4j RCE Attempt", "Attempted Administrator Privilege Gain", 1},
	{"GPL SSH Brute Force Attempt", "Attempted Information Leak", 2},
	{"ET SCAN Nmap Scripting Engine User-Agent Detected", "Web Application Attack", 2},
	{"SURICATA STREAM Packet with invalid timestamp", "Potentially Bad Traffic", 3},
}

var countries = []struct{ name, code string }{
	{"China", "CN"},
	{"Russia", "RU"},
	{"United States", "US"},
	{"Brazil", "BR"},
	{"Germany", "DE"},
	{"", ""},
}

var (
	destPorts = []int{80, 443, 22, 53}
	protocols = []string{"TCP", "UDP"}
)

// Options controls event generation
type Options struct {
	Count  int
	Spread time.Duration
	Now    time.Time
	Rand   *rand.Rand
}

// Events returns opts.Count events observed within opts.Spread before
// opts.Now. About a third are flow noise with a low severity; the rest are
// alerts drawn from a fixed signature set. A small pool of source addresses
// is reused so the events group into incidents.
func Events(opts Options) []database.Event {
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	spread := opts.Spread
	if spread <= 0 {
		spread = time.Hour
	}

	events := make([]database.Event, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		country := countries[r.Intn(len(countries))]
		e := database.Event{
			ID:             newID(),
			ObservedAt:     now.Add(-time.Duration(r.Int63n(int64(spread)))).UTC(),
			SourceAddress:  fmt.Sprintf("192.168.1.%d", r.Intn(32)),
			SourcePort:     1024 + r.Intn(64511),
			DestAddress:    fmt.Sprintf("10.0.0.%d", r.Intn(255)),
			DestPort:       destPorts[r.Intn(len(destPorts))],
			Protocol:       protocols[r.Intn(len(protocols))],
			GeoCountry:     country.name,
			GeoCountryCode: country.code,
			RawPayload:     `{"note":"demo data"}`,
		}

		if r.Float64() < 0.3 {
			e.Signature = "SURICATA flow"
			e.Category = "Not Suspicious Traffic"
			e.Severity = 3
		} else {
			sig := signatures[r.Intn(len(signatures))]
			e.Signature = sig.name
			e.Category = sig.category
			e.Severity = sig.severity
		}
		events = append(events, e)
	}
	return events
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
