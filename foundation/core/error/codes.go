// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used to classify failures of the
//              buffer, move and trim primitives and of the spool/archive
//              collaborators built on top of them.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-19 v0.2.0: Reduced to the idoutils taxonomy

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL"
	CodeNotFound Code = "NOT_FOUND"

	// Primitive failures
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeOutOfMemory     Code = "OUT_OF_MEMORY"
	CodeIOFailure       Code = "IO_FAILURE"

	// Record framing
	CodeFormatError Code = "FORMAT_ERROR"

	// Persistence
	CodeStorageError Code = "STORAGE_ERROR"

	// Configuration and environment
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound,
		CodeInvalidArgument, CodeOutOfMemory, CodeIOFailure,
		CodeFormatError, CodeStorageError,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeInvalidArgument, CodeFormatError:
		return "input"
	case CodeOutOfMemory:
		return "resource"
	case CodeIOFailure, CodeNotFound:
		return "filesystem"
	case CodeStorageError:
		return "storage"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// ExitCode maps the code to a process exit status for the CLI.
func (c Code) ExitCode() int {
	switch c {
	case CodeInvalidArgument, CodeFormatError:
		return 2
	case CodeIOFailure, CodeNotFound:
		return 3
	case CodeOutOfMemory:
		return 4
	case CodeConfigError, CodeInvalidConfig:
		return 5
	default:
		return 1
	}
}
