// File: timex.go
// Title: Duration Parsing and Formatting
// Description: Parses durations with day and week units in addition to the
//              Go syntax, and formats durations and ages compactly for
//              configuration files and status output.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-12-06
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2025-12-06 v0.2.0: Reduced to duration handling, added "30d" suffix form and Ago

package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day and Week are fixed-length units used by ParseDuration
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var unitNames = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hour": time.Hour,
	"d": Day, "day": Day,
	"w": Week, "week": Week,
}

// ParseDuration parses Go durations ("1h30m"), a number with a day or week
// suffix ("30d", "2w") and spelled out forms ("2 weeks", "1.5 hours").
// Negative durations are rejected.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if strings.HasPrefix(value, "-") {
		return 0, fmt.Errorf("negative durations are not supported: %s", value)
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}

	lower := strings.ToLower(value)
	num, unit := splitNumber(lower)
	if num == "" {
		return 0, fmt.Errorf("unable to parse duration string: %s", value)
	}

	unit = strings.TrimSpace(unit)
	if len(unit) > 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	scale, ok := unitNames[unit]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit %q in %s", unit, value)
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse duration string: %s", value)
	}
	return time.Duration(n * float64(scale)), nil
}

// splitNumber splits a leading decimal number from the rest of s
func splitNumber(s string) (num, rest string) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	return s[:i], s[i:]
}

// FormatDurationCompact formats a duration as "1d 2h 30m 45s". Units below
// a second are only shown for durations shorter than a second.
func FormatDurationCompact(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDurationCompact(-d)
	}
	if d < time.Second {
		if d < time.Millisecond {
			return d.String()
		}
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	var parts []string
	if days := d / Day; days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
		d -= days * Day
	}
	if hours := d / time.Hour; hours > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
		d -= hours * time.Hour
	}
	if minutes := d / time.Minute; minutes > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
		d -= minutes * time.Minute
	}
	parts = append(parts, fmt.Sprintf("%ds", d/time.Second))

	return strings.Join(parts, " ")
}

// Ago formats the time elapsed between t and now, e.g. "3m 12s ago"
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t).Truncate(time.Second)
	if d < 0 {
		return "in " + FormatDurationCompact(-d)
	}
	return FormatDurationCompact(d) + " ago"
}
