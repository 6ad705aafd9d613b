package incidents

import (
	"fmt"
	"strings"
	"time"
)

// ParseWindow parses a window length such as "1H", "12h", "90m" or "24h".
// An empty string yields def. Non-positive windows and windows longer than
// max are rejected.
func ParseWindow(s string, def, max time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	d, err := time.ParseDuration(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("invalid window %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window must be positive, got %s", s)
	}
	if max > 0 && d > max {
		return 0, fmt.Errorf("window %s exceeds maximum of %s", s, max)
	}
	return d, nil
}
