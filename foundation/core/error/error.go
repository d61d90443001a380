// File: error.go
// Title: Core Error Implementation
// Description: Implements the main Error type with contextual information,
//              stack traces, and metadata. The type keeps compatibility with
//              the standard error interface, including errors.Is/As through
//              Unwrap, so OS errors stay reachable behind a coded error.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors
// - 2026-10-19 v0.2.0: Chain-aware code lookup, dropped request/user context

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Error represents a structured error with context, codes, and metadata
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	timestamp time.Time
	operation string
	details   map[string]interface{}

	stackTrace []StackFrame
}

// StackFrame represents a single frame in the stack trace
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

const (
	// MaxErrorChainDepth limits the depth of error wrapping
	MaxErrorChainDepth = 15

	// MaxStackFrames limits the number of stack frames captured
	MaxStackFrames = 20
)

var stackFramePool = sync.Pool{
	New: func() interface{} {
		return make([]StackFrame, 0, MaxStackFrames)
	},
}

// New creates a new Error with the given message
func New(message string) *Error {
	return &Error{
		message:    message,
		code:       CodeUnknown,
		severity:   SeverityMedium,
		timestamp:  time.Now(),
		details:    make(map[string]interface{}),
		stackTrace: captureStackTrace(2),
	}
}

// Newf creates a new Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	e := New(fmt.Sprintf(format, args...))
	e.stackTrace = captureStackTrace(2)
	return e
}

// Wrap wraps an existing error with additional context. Wrapping nil returns nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if depth := chainDepth(err); depth >= MaxErrorChainDepth {
		return &Error{
			message:    fmt.Sprintf("%s (chain truncated at depth %d): %s", message, MaxErrorChainDepth, err.Error()),
			code:       GetCode(err),
			severity:   SeverityHigh,
			timestamp:  time.Now(),
			details:    map[string]interface{}{"truncated": true, "original_depth": depth},
			stackTrace: captureStackTrace(2),
		}
	}

	wrapped := &Error{
		message:    message,
		cause:      err,
		code:       CodeUnknown,
		severity:   SeverityMedium,
		timestamp:  time.Now(),
		details:    make(map[string]interface{}),
		stackTrace: captureStackTrace(2),
	}

	// Inherit classification from an inner coded error
	var inner *Error
	if errors.As(err, &inner) {
		wrapped.code = inner.code
		wrapped.severity = inner.severity
		wrapped.operation = inner.operation
		for k, v := range inner.details {
			wrapped.details[k] = v
		}
	}

	return wrapped
}

func chainDepth(err error) int {
	depth := 0
	for current := err; current != nil && depth < MaxErrorChainDepth*2; current = errors.Unwrap(current) {
		depth++
	}
	return depth
}

// Error implements the standard error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

// Unwrap returns the underlying cause for error unwrapping
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the error code
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	if e.severity == SeverityMedium { // Only auto-set if not explicitly set
		e.severity = GetSeverityFromCode(code)
	}
	return e
}

// WithSeverity sets the error severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithDetails adds multiple key-value details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// WithOperation sets the operation that caused the error
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// Message returns the message without the cause chain
func (e *Error) Message() string {
	return e.message
}

// Code returns the error code
func (e *Error) Code() Code {
	return e.code
}

// Severity returns the error severity
func (e *Error) Severity() Severity {
	return e.severity
}

// Timestamp returns when the error occurred
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Operation returns the operation that caused the error
func (e *Error) Operation() string {
	return e.operation
}

// Details returns a copy of the error details
func (e *Error) Details() map[string]interface{} {
	result := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		result[k] = v
	}
	return result
}

// Detail returns a single detail value
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.details[key]
	return v, ok
}

// StackTrace returns the stack trace
func (e *Error) StackTrace() []StackFrame {
	result := make([]StackFrame, len(e.stackTrace))
	copy(result, e.stackTrace)
	return result
}

// RootCause returns the deepest error in the chain
func (e *Error) RootCause() error {
	var last error = e
	for current := error(e); current != nil; current = errors.Unwrap(current) {
		last = current
	}
	return last
}

// String returns a detailed multi-line representation of the error
func (e *Error) String() string {
	parts := []string{
		fmt.Sprintf("Error: %s", e.message),
		fmt.Sprintf("Code: %s", e.code),
		fmt.Sprintf("Severity: %s", e.severity),
		fmt.Sprintf("Timestamp: %s", e.timestamp.Format(time.RFC3339)),
	}

	if e.operation != "" {
		parts = append(parts, fmt.Sprintf("Operation: %s", e.operation))
	}

	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		detailStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			detailStrs = append(detailStrs, fmt.Sprintf("%s=%v", k, e.details[k]))
		}
		parts = append(parts, fmt.Sprintf("Details: {%s}", strings.Join(detailStrs, ", ")))
	}

	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %s", e.cause.Error()))
	}

	return strings.Join(parts, "\n")
}

// MarshalJSON implements json.Marshaler for structured logging
func (e *Error) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{
		"message":   e.message,
		"code":      e.code,
		"severity":  e.severity.String(),
		"timestamp": e.timestamp.Format(time.RFC3339),
		"details":   e.details,
	}

	if e.operation != "" {
		data["operation"] = e.operation
	}

	if e.cause != nil {
		data["cause"] = e.cause.Error()
	}

	if len(e.stackTrace) > 0 {
		data["stack_trace"] = e.stackTrace
	}

	return json.Marshal(data)
}

// captureStackTrace captures the current stack trace with pooling optimization
func captureStackTrace(skip int) []StackFrame {
	frames := stackFramePool.Get().([]StackFrame)[:0]

	for i := skip; i < MaxStackFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	result := make([]StackFrame, len(frames))
	copy(result, frames)
	stackFramePool.Put(frames[:0])

	return result
}

// HasCode reports whether any coded error in the chain carries code
func HasCode(err error, code Code) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if coded, ok := current.(*Error); ok && coded.code == code {
			return true
		}
	}
	return false
}

// GetCode returns the code of the outermost coded error, or CodeUnknown
func GetCode(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the outermost coded error, or SeverityMedium
func GetSeverity(err error) Severity {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.severity
	}
	return SeverityMedium
}
