// File: filex.go
// Title: Core File Utilities
// Description: File existence and size helpers plus the pooled scratch
//              buffers used by the copy fallback of Move.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive file utilities
// - 2026-10-19 v0.2.0: Reduced to the helpers used by spool and archive

package filex

import (
	"fmt"
	"os"
	"sync"
)

const (
	smallBufferSize = 8 * 1024
	largeBufferSize = 32 * 1024
	hugeBufferSize  = 64 * 1024
)

// Buffer pools for copy operations
var (
	smallBufferPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, smallBufferSize)
			return &b
		},
	}

	largeBufferPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, largeBufferSize)
			return &b
		},
	}

	hugeBufferPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, hugeBufferSize)
			return &b
		},
	}
)

// getPooledBuffer returns a scratch buffer of at most 64KB and the function
// that hands it back to its pool.
func getPooledBuffer(size int) ([]byte, func()) {
	var pool *sync.Pool
	switch {
	case size <= smallBufferSize:
		pool = &smallBufferPool
	case size <= largeBufferSize:
		pool = &largeBufferPool
	default:
		pool = &hugeBufferPool
		size = min(size, hugeBufferSize)
	}

	bp := pool.Get().(*[]byte)
	return (*bp)[:size], func() { pool.Put(bp) }
}

// Exists checks if a file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir checks if the path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Size returns the size of a file in bytes
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get size of %s: %w", path, err)
	}
	return info.Size(), nil
}

// FormatSize formats a byte count as a human-readable string
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// MkdirAll creates a directory and all necessary parent directories
func MkdirAll(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
