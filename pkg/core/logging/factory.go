// ============================================================================
// idoutils - IDO data-out utilities
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating configured loggers
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	idolog "github.com/msto63/idoutils/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service or component name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json", "text" or "logfmt" (default: text)
	Format string

	// Primary output (default: os.Stderr)
	Output io.Writer

	// Additional outputs besides the primary one
	AdditionalOutputs []io.Writer

	// Include file:line of the call site
	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "text",
	}
}

// NewLogger creates a logger from cfg. Unknown levels fall back to info
// and unknown formats to text.
func NewLogger(cfg LoggerConfig) *idolog.Logger {
	level, err := idolog.ParseLevel(cfg.Level)
	if err != nil {
		level = idolog.LevelInfo
	}

	format, err := idolog.ParseFormat(cfg.Format)
	if err != nil {
		format = idolog.FormatText
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return idolog.NewWithConfig(idolog.Config{
		Level:        level,
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: cfg.EnableCaller,
	})
}
