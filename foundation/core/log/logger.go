// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type: leveled structured logging with
//              context fields, pluggable formatters and integration with the
//              coded error type.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-19 v0.2.0: Removed async worker and request context, serialized writes

package log

import (
	"errors"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	// Context fields that are added to all log entries
	contextFields Fields

	enableCaller     bool
	callerSkipFrames int

	mutex sync.RWMutex
	// writeMu is shared between clones writing to the same output
	writeMu *sync.Mutex
}

// Config represents logger configuration
type Config struct {
	Level            Level
	Format           Format
	Output           io.Writer
	Name             string
	EnableCaller     bool
	CallerSkipFrames int
}

// New creates a new logger with default configuration
func New() *Logger {
	return &Logger{
		level:         DefaultLevel(),
		formatter:     NewJSONFormatter(),
		output:        os.Stdout,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	logger := &Logger{
		level:            config.Level,
		formatter:        GetFormatter(config.Format),
		output:           config.Output,
		name:             config.Name,
		contextFields:    make(Fields),
		enableCaller:     config.EnableCaller,
		callerSkipFrames: config.CallerSkipFrames,
		writeMu:          &sync.Mutex{},
	}

	if config.Output == nil {
		logger.output = os.Stdout
	}

	return logger
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel sets the minimum log level
func (l *Logger) WithLevel(level Level) *Logger {
	clone := l.clone()
	clone.level = level
	return clone
}

// WithFormat sets the output format
func (l *Logger) WithFormat(format Format) *Logger {
	clone := l.clone()
	clone.formatter = GetFormatter(format)
	return clone
}

// WithFormatter sets a custom formatter
func (l *Logger) WithFormatter(formatter Formatter) *Logger {
	clone := l.clone()
	clone.formatter = formatter
	return clone
}

// WithOutput sets the output destination
func (l *Logger) WithOutput(output io.Writer) *Logger {
	clone := l.clone()
	clone.output = output
	clone.writeMu = &sync.Mutex{}
	return clone
}

// WithName sets the logger name
func (l *Logger) WithName(name string) *Logger {
	clone := l.clone()
	clone.name = name
	return clone
}

// WithField adds a context field to all subsequent log entries
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields adds multiple context fields
func (l *Logger) WithFields(fields Fields) *Logger {
	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

// WithCaller enables caller information in log entries
func (l *Logger) WithCaller(skip int) *Logger {
	clone := l.clone()
	clone.enableCaller = true
	clone.callerSkipFrames = skip
	return clone
}

// Trace logs a trace level message
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, nil, fields...)
}

// Debug logs a debug level message
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, fields...)
}

// Info logs an info level message
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, fields...)
}

// Warn logs a warning level message
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, fields...)
}

// Error logs an error level message
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, fields...)
}

// Fatal logs a fatal level message and exits the program
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// ErrorWithErr logs an error with an error object
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// WarnWithErr logs a warning with an error object
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// LogError logs an error with its code, severity and details. The level
// follows the error severity; plain errors are logged at error level.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	var codedErr *idoerr.Error
	if !errors.As(err, &codedErr) {
		l.log(LevelError, err.Error(), err)
		return
	}

	fields := Fields{
		"error_code":     codedErr.Code().String(),
		"error_severity": codedErr.Severity().String(),
	}
	if op := codedErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range codedErr.Details() {
		fields["error_"+k] = v
	}

	l.log(levelForSeverity(codedErr.Severity()), err.Error(), err, fields)
}

func levelForSeverity(severity idoerr.Severity) Level {
	switch severity {
	case idoerr.SeverityLow:
		return LevelInfo
	case idoerr.SeverityMedium:
		return LevelWarn
	default:
		return LevelError
	}
}

// StartTimer creates and starts a new performance timer
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return level.ShouldLog(l.level)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.level
}

// SetLevel sets the log level in place
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.level = level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	l.mutex.RLock()

	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.Error = err

	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, fieldSet := range fields {
		for k, v := range fieldSet {
			entry.Fields[k] = v
		}
	}

	if l.enableCaller {
		if function, file, line, ok := l.getCaller(); ok {
			entry.Caller = &CallerInfo{Function: function, File: file, Line: line}
		}
	}

	formatter := l.formatter
	output := l.output
	writeMu := l.writeMu
	l.mutex.RUnlock()

	formatted, formatErr := formatter.Format(entry)
	if formatErr != nil {
		return
	}

	writeMu.Lock()
	_, _ = output.Write(formatted)
	writeMu.Unlock()
}

func (l *Logger) getCaller() (function, file string, line int, ok bool) {
	// getCaller, log, public method, user code
	skip := 3 + l.callerSkipFrames

	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0, false
	}

	function = "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
		if idx := strings.LastIndex(function, "."); idx != -1 {
			function = function[idx+1:]
		}
	}

	if idx := strings.LastIndex(file, "/"); idx != -1 {
		file = file[idx+1:]
	}

	return function, file, line, true
}

// clone creates a copy of the logger for immutable operations
func (l *Logger) clone() *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	clone := &Logger{
		level:            l.level,
		formatter:        l.formatter,
		output:           l.output,
		name:             l.name,
		enableCaller:     l.enableCaller,
		callerSkipFrames: l.callerSkipFrames,
		contextFields:    make(Fields, len(l.contextFields)),
		writeMu:          l.writeMu,
	}

	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}

	return clone
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New()
)

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Debug logs a debug message using the default logger
func Debug(message string, fields ...Fields) {
	GetDefault().Debug(message, fields...)
}

// Info logs an info message using the default logger
func Info(message string, fields ...Fields) {
	GetDefault().Info(message, fields...)
}

// Warn logs a warning message using the default logger
func Warn(message string, fields ...Fields) {
	GetDefault().Warn(message, fields...)
}

// Error logs an error message using the default logger
func Error(message string, fields ...Fields) {
	GetDefault().Error(message, fields...)
}
