// Package log provides structured logging for idoutils.
//
// Package: log
// Title: Structured Logging
// Description: Leveled logger with context fields, JSON, text and logfmt
//              output, timers, and logging of coded errors at a level that
//              follows their severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-19 v0.2.0: Reduced to the pieces the spool and archive services use
//
// Usage:
//
//	logger := log.New().
//		WithLevel(log.LevelInfo).
//		WithFormat(log.FormatLogfmt).
//		WithField("component", "archive")
//
//	logger.Info("file archived", log.Field("bytes", 4096))
//	logger.LogError(err)
//
//	timer := logger.StartTimer("archive.move")
//	// ... perform the move
//	timer.Stop()
//
// Loggers are immutable from the caller's point of view: every With* method
// returns a clone, so a base logger can be shared between goroutines.
package log
