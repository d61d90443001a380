// Package error provides structured error handling for idoutils.
//
// Package: error
// Title: idoutils Error Handling Framework
// Description: Structured errors with codes, severity, details and stack
//              traces. Coded errors wrap the underlying cause so callers can
//              still match OS conditions with errors.Is.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: idoutils taxonomy (invalid argument, out of memory, I/O failure)
//
// Usage:
//
//	import idoerr "github.com/msto63/idoutils/foundation/core/error"
//
//	err := idoerr.Wrap(osErr, "copy fallback failed").
//		WithCode(idoerr.CodeIOFailure).
//		WithOperation("filex.Move").
//		WithDetail("source", src)
//
//	if idoerr.HasCode(err, idoerr.CodeIOFailure) {
//		// the OS error is still reachable
//		_ = errors.Is(err, fs.ErrNotExist)
//	}
package error
