// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors so that the logger can pick
//              a level and operators can tell a bad argument from a full disk.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-19 v0.2.0: Severity mapping for the idoutils codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a caller mistake such as an absent argument
	SeverityLow Severity = iota

	// SeverityMedium indicates a failure that leaves the system consistent
	SeverityMedium

	// SeverityHigh indicates a failure that may leave partial state behind
	SeverityHigh

	// SeverityCritical indicates the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeOutOfMemory:
		return SeverityCritical
	case CodeIOFailure, CodeStorageError:
		return SeverityHigh
	case CodeInvalidArgument, CodeFormatError, CodeNotFound, CodeInvalidConfig:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
