// File: utils.go
// Title: Shared Error Handling Utilities
// Description: Provides the error builder and the per-module constructors
//              used by dbuf, filex, stringx and the record codec so that
//              every failure carries the same module/operation details.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of shared error utilities
// - 2025-07-26 v0.1.1: Enhanced OutOfRange function with "validation failed:" prefix
// - 2026-10-19 v0.2.0: Constructors for the idoutils taxonomy

package errors

import (
	"errors"
	"fmt"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
)

// Module identifiers for error categorization
const (
	ModuleDbuf    = "dbuf"
	ModuleFilex   = "filex"
	ModuleStringx = "stringx"
	ModuleRecord  = "record"
	ModuleConfig  = "config"
	ModuleArchive = "archive"
	ModuleSpool   = "spool"
)

// ErrorBuilder provides a fluent interface for building standardized errors
type ErrorBuilder struct {
	module      string
	operation   string
	message     string
	cause       error
	details     map[string]interface{}
	severity    idoerr.Severity
	severitySet bool
	code        idoerr.Code
}

// NewErrorBuilder creates a new error builder for the specified module
func NewErrorBuilder(module string) *ErrorBuilder {
	return &ErrorBuilder{
		module:  module,
		details: make(map[string]interface{}),
	}
}

// Operation sets the operation name for the error
func (eb *ErrorBuilder) Operation(operation string) *ErrorBuilder {
	eb.operation = operation
	return eb
}

// Message sets the error message
func (eb *ErrorBuilder) Message(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// Messagef sets the error message with formatting
func (eb *ErrorBuilder) Messagef(format string, args ...interface{}) *ErrorBuilder {
	eb.message = fmt.Sprintf(format, args...)
	return eb
}

// Cause sets the underlying cause of the error
func (eb *ErrorBuilder) Cause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// Detail adds a detail key-value pair to the error
func (eb *ErrorBuilder) Detail(key string, value interface{}) *ErrorBuilder {
	eb.details[key] = value
	return eb
}

// Severity overrides the severity derived from the code
func (eb *ErrorBuilder) Severity(severity idoerr.Severity) *ErrorBuilder {
	eb.severity = severity
	eb.severitySet = true
	return eb
}

// Code sets the error code
func (eb *ErrorBuilder) Code(code idoerr.Code) *ErrorBuilder {
	eb.code = code
	return eb
}

// Build creates the final error
func (eb *ErrorBuilder) Build() *idoerr.Error {
	if eb.code == "" {
		eb.code = idoerr.CodeUnknown
	}

	if eb.message == "" {
		if eb.operation != "" {
			eb.message = fmt.Sprintf("%s.%s failed", eb.module, eb.operation)
		} else {
			eb.message = fmt.Sprintf("%s operation failed", eb.module)
		}
	}

	eb.details["module"] = eb.module

	var err *idoerr.Error
	if eb.cause != nil {
		err = idoerr.Wrap(eb.cause, eb.message)
	} else {
		err = idoerr.New(eb.message)
	}

	severity := idoerr.GetSeverityFromCode(eb.code)
	if eb.severitySet {
		severity = eb.severity
	}

	err = err.
		WithCode(eb.code).
		WithSeverity(severity).
		WithDetails(eb.details)
	if eb.operation != "" {
		err = err.WithOperation(eb.module + "." + eb.operation)
	}
	return err
}

// =============================================================================
// STANDARD ERROR CONSTRUCTORS
// =============================================================================

// InvalidArgument reports an absent or unusable required argument
func InvalidArgument(module, operation, argument string, reason string) *idoerr.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("%s.%s: invalid argument %s: %s", module, operation, argument, reason).
		Code(idoerr.CodeInvalidArgument).
		Detail("argument", argument).
		Build()
}

// OutOfMemory reports an allocation that could not be satisfied
func OutOfMemory(module, operation string, requested int, cause error) *idoerr.Error {
	b := NewErrorBuilder(module).
		Operation(operation).
		Messagef("%s.%s: cannot allocate %d bytes", module, operation, requested).
		Code(idoerr.CodeOutOfMemory).
		Detail("requested", requested)
	if cause != nil {
		b = b.Cause(cause)
	}
	return b.Build()
}

// IOFailure reports a filesystem failure and keeps the OS error as cause
func IOFailure(module, operation, path string, cause error) *idoerr.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("%s.%s: %s", module, operation, path).
		Cause(cause).
		Code(idoerr.CodeIOFailure).
		Detail("path", path).
		Build()
}

// FormatError reports malformed framed input
func FormatError(module string, line int, input string, reason string) *idoerr.Error {
	return NewErrorBuilder(module).
		Operation("decode").
		Messagef("%s: line %d: %s", module, line, reason).
		Code(idoerr.CodeFormatError).
		Detail("line", line).
		Detail("input", input).
		Build()
}

// StorageError reports a failure of a persistent store
func StorageError(module, operation string, cause error) *idoerr.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("%s.%s: storage failure", module, operation).
		Cause(cause).
		Code(idoerr.CodeStorageError).
		Build()
}

// =============================================================================
// ANALYSIS HELPERS
// =============================================================================

// ExtractDetails extracts all details from the outermost coded error
func ExtractDetails(err error) map[string]interface{} {
	var coded *idoerr.Error
	if errors.As(err, &coded) {
		return coded.Details()
	}
	return nil
}

// ExtractModule returns the module recorded on the outermost coded error
func ExtractModule(err error) string {
	if module, ok := ExtractDetails(err)["module"].(string); ok {
		return module
	}
	return ""
}

// =============================================================================
// MODULE CONVENIENCE FUNCTIONS
// =============================================================================

// DbufInvalidArgument is raised by the growable buffer
func DbufInvalidArgument(operation, argument, reason string) *idoerr.Error {
	return InvalidArgument(ModuleDbuf, operation, argument, reason)
}

// DbufOutOfMemory is raised when the buffer cannot grow
func DbufOutOfMemory(operation string, requested int, cause error) *idoerr.Error {
	return OutOfMemory(ModuleDbuf, operation, requested, cause)
}

// FilexInvalidArgument is raised for absent paths
func FilexInvalidArgument(operation, argument string) *idoerr.Error {
	return InvalidArgument(ModuleFilex, operation, argument, "path is empty")
}

// FilexIOFailure is raised by the move primitive
func FilexIOFailure(operation, path string, cause error) *idoerr.Error {
	return IOFailure(ModuleFilex, operation, path, cause)
}

// RecordFormatError is raised by the record decoder and encoder
func RecordFormatError(line int, input, reason string) *idoerr.Error {
	return FormatError(ModuleRecord, line, input, reason)
}
