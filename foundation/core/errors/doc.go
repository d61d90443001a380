// Package errors provides the shared constructors that every idoutils
// module uses to report failures.
//
// Package: errors
// Title: Shared Error Constructors
// Description: A fluent ErrorBuilder plus one constructor per failure class
//              (invalid argument, out of memory, I/O failure, format and
//              storage errors). Each error records the module and operation
//              that raised it.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: idoutils constructors
//
// Usage:
//
//	return errors.FilexIOFailure("move", dst, err).
//		WithDetail("destination_truncated", true)
package errors
