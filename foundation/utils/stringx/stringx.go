// File: stringx.go
// Title: Core String Utility Functions
// Description: Small string helpers used for validation and for keeping
//              error details readable.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core utilities
// - 2026-10-19 v0.2.0: Reduced to blank checks and truncation

package stringx

import (
	"unicode"
	"unicode/utf8"
)

// IsBlank returns true if the string is empty or contains only whitespace.
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Truncate truncates a string to maxLen runes, adding an ellipsis if truncated.
// Multi-byte characters are never split.
func Truncate(s string, maxLen int, ellipsis string) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	ellipsisLen := utf8.RuneCountInString(ellipsis)
	if ellipsisLen >= maxLen {
		return string([]rune(s)[:maxLen])
	}

	return string([]rune(s)[:maxLen-ellipsisLen]) + ellipsis
}
