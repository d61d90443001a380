// Package stringx provides string and text buffer helpers.
//
// Package: stringx
// Title: String Utilities
// Description: In-place whitespace trimming for fixed-capacity text
//              buffers, plus a few string checks used in validation.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Added Strip and StripString
//
// Strip works on byte buffers that may contain a NUL terminator, as read
// into a fixed-size line buffer. Only space, tab, newline and carriage
// return count as whitespace; other Unicode spaces are kept:
//
//	line := make([]byte, 0, 512)
//	line = append(line, "  \t hello world \r\n"...)
//	text, res := stringx.Strip(line)
//	// text == "hello world", res == stringx.StripTrimmed
package stringx
