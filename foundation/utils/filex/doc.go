// Package filex implements file operations for the spool and archive paths.
//
// Package: filex
// Title: Portable File Operations
// Description: Move with a copy fallback for cross-device renames, plus the
//              small set of existence and size helpers the services need.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive file utilities
// - 2026-10-19 v0.2.0: Cross-device aware Move, coded errors
//
// # Move
//
// Move tries os.Rename first. Only when the rename fails with EXDEV
// (ERROR_NOT_SAME_DEVICE on Windows) does it fall back to copying:
//
//  1. open the destination for writing, creating or truncating it
//  2. open the source for reading
//  3. copy in fixed-size blocks through a pooled scratch buffer
//  4. close both files and remove the source
//
// Failures while opening either file report the original rename error.
// Failures during copy, close or removal are IO_FAILURE errors wrapping the
// OS error, so errors.Is(err, fs.ErrNotExist) and friends keep working.
//
// A failing source open happens after the destination was truncated. The
// destination is not restored; callers can detect this case through the
// destination_truncated detail:
//
//	if err := filex.Move(src, dst); err != nil {
//		if v, ok := idoerrors.ExtractDetails(err)["destination_truncated"]; ok && v == true {
//			// dst exists but is empty
//		}
//	}
package filex
