// File: strip.go
// Title: In-Place Whitespace Trimming
// Description: Removes leading and trailing whitespace from NUL-terminated
//              text held in a caller-owned byte buffer.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package stringx

import "bytes"

// StripResult tells whether Strip modified its input.
type StripResult int

const (
	// StripUnchanged means the input was absent, empty or already trimmed
	StripUnchanged StripResult = iota

	// StripTrimmed means whitespace was removed
	StripTrimmed
)

// String returns the string representation of the result
func (r StripResult) String() string {
	switch r {
	case StripUnchanged:
		return "unchanged"
	case StripTrimmed:
		return "trimmed"
	default:
		return "unknown"
	}
}

// isStripSpace matches space, tab, newline and carriage return only.
func isStripSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Strip trims whitespace from both ends of the text in buf, in place.
//
// The text ends at the first NUL byte, or at len(buf) if there is none.
// Trailing whitespace is removed first, then leading whitespace; the
// remaining bytes are moved to the front of buf with a single copy and,
// when buf has room, followed by a NUL. The returned slice is the trimmed
// text and shares storage with buf. Nothing is ever allocated.
func Strip(buf []byte) ([]byte, StripResult) {
	if buf == nil {
		return nil, StripUnchanged
	}

	n := bytes.IndexByte(buf, 0)
	if n < 0 {
		n = len(buf)
	}

	end := n
	for end > 0 && isStripSpace(buf[end-1]) {
		end--
	}
	start := 0
	for start < end && isStripSpace(buf[start]) {
		start++
	}

	if start == 0 && end == n {
		return buf[:n], StripUnchanged
	}

	m := copy(buf, buf[start:end])
	if m < len(buf) {
		buf[m] = 0
	}
	return buf[:m], StripTrimmed
}

// StripString returns s without leading and trailing whitespace of the
// same class Strip uses. The result is a substring of s.
func StripString(s string) string {
	end := len(s)
	for end > 0 && isStripSpace(s[end-1]) {
		end--
	}
	start := 0
	for start < end && isStripSpace(s[start]) {
		start++
	}
	return s[start:end]
}
