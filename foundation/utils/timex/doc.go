// Package timex parses and formats durations for configuration files and
// command output.
//
// ParseDuration accepts everything time.ParseDuration does plus day and week
// units, so retention and rotation settings can be written as "30d" or
// "2 weeks":
//
//	d, err := timex.ParseDuration("30d")
//
// FormatDurationCompact and Ago render durations as "1d 2h 0m 5s" and
// "5m 0s ago".
package timex
