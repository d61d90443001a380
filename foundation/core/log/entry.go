// File: entry.go
// Title: Log Entry Structure
// Description: Defines the Entry type and the Fields helpers used to attach
//              structured data to log messages.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured entries
// - 2026-10-19 v0.2.0: Removed request/user context

package log

import (
	"sort"
	"time"
)

// Entry represents a single log entry with all its metadata
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string

	Fields Fields
	Error  error

	Duration time.Duration
	Caller   *CallerInfo
}

// CallerInfo contains information about where the log was called from
type CallerInfo struct {
	Function string
	File     string
	Line     int
}

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

// Field creates a single field for logging
func Field(key string, value interface{}) Fields {
	return Fields{key: value}
}

// Err creates an error field for logging
func Err(err error) Fields {
	return Fields{"error": err}
}

// String creates a string field for logging
func String(key string, value string) Fields {
	return Fields{key: value}
}

// Int64 creates an int64 field for logging
func Int64(key string, value int64) Fields {
	return Fields{key: value}
}

// Merge combines two Fields into a new one; other wins on conflicts
func (f Fields) Merge(other Fields) Fields {
	result := make(Fields, len(f)+len(other))
	for k, v := range f {
		result[k] = v
	}
	for k, v := range other {
		result[k] = v
	}
	return result
}

// With adds a field to the existing Fields
func (f Fields) With(key string, value interface{}) Fields {
	if f == nil {
		f = make(Fields)
	}
	f[key] = value
	return f
}

// keys returns the field names in a stable order
func (f Fields) keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewEntry creates a new log entry with the given level and message
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}
