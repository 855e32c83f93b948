// config/throttle.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a request budget per period, written as "<requests>/<period>"
// where only the first letter of the period counts (s, m, h, d).
type Rate struct {
	Requests int
	Period   time.Duration
}

var ratePeriods = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseRate parses values such as "100/day" or "5/minute".
func ParseRate(s string) (Rate, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: expected <requests>/<period>", s)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || requests <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: request count must be a positive integer", s)
	}

	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		return Rate{}, fmt.Errorf("invalid rate %q: missing period", s)
	}
	duration, ok := ratePeriods[period[0]]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period %q", s, period)
	}

	return Rate{Requests: requests, Period: duration}, nil
}

// UnmarshalText lets the env parser decode rates directly.
func (r *Rate) UnmarshalText(text []byte) error {
	parsed, err := ParseRate(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Rate) String() string {
	switch r.Period {
	case time.Second:
		return fmt.Sprintf("%d/second", r.Requests)
	case time.Minute:
		return fmt.Sprintf("%d/minute", r.Requests)
	case time.Hour:
		return fmt.Sprintf("%d/hour", r.Requests)
	case 24 * time.Hour:
		return fmt.Sprintf("%d/day", r.Requests)
	}
	return fmt.Sprintf("%d/%s", r.Requests, r.Period)
}
