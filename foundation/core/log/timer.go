// File: timer.go
// Title: Performance Timer
// Description: Measures operation duration and logs it on completion.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-19 v0.2.0: Trimmed to Stop/StopWithError

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the log level for the timer completion message
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// IsRunning reports whether the timer has not been stopped yet
func (t *Timer) IsRunning() bool {
	return !t.stopped
}

// Stop stops the timer and logs the elapsed time. A second call returns 0.
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.finish()

	if t.logger != nil {
		t.logger.log(t.level, t.operation+" completed", nil, t.fields)
	}
	return elapsed
}

// StopWithError stops the timer and logs err with the elapsed time
func (t *Timer) StopWithError(err error) time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.finish()
	t.fields["success"] = false

	if t.logger != nil {
		t.logger.ErrorWithErr(t.operation+" failed", err, t.fields)
	}
	return elapsed
}

func (t *Timer) finish() time.Duration {
	elapsed := t.Elapsed()
	t.stopped = true
	t.fields["operation"] = t.operation
	t.fields["duration_ms"] = float64(elapsed.Nanoseconds()) / 1e6
	return elapsed
}
