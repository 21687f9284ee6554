package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParsePeriod converts a history period string ("300d", "6mo", "1y", "max")
// into a duration. "max" maps to 20 years, which covers any listing history
// the chart endpoint serves at daily resolution.
func ParsePeriod(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty period")
	}
	if s == "max" {
		return 20 * 365 * 24 * time.Hour, nil
	}

	var unit time.Duration
	var num string
	switch {
	case strings.HasSuffix(s, "mo"):
		unit = 30 * 24 * time.Hour
		num = strings.TrimSuffix(s, "mo")
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
		num = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "wk"):
		unit = 7 * 24 * time.Hour
		num = strings.TrimSuffix(s, "wk")
	case strings.HasSuffix(s, "y"):
		unit = 365 * 24 * time.Hour
		num = strings.TrimSuffix(s, "y")
	default:
		return 0, fmt.Errorf("invalid period %q", s)
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return time.Duration(n) * unit, nil
}
