// File: alloc.go
// Title: Buffer Storage Allocation
// Description: Allocator abstraction used by Buffer when it grows, plus the
//              default heap allocator with an optional allocation limit.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package dbuf

import (
	"errors"
	"fmt"
)

// Allocator provides zeroed storage of exactly size bytes.
type Allocator interface {
	Allocate(size int) ([]byte, error)
}

// AllocatorFunc adapts an ordinary function to the Allocator interface.
type AllocatorFunc func(size int) ([]byte, error)

// Allocate calls f(size).
func (f AllocatorFunc) Allocate(size int) ([]byte, error) {
	return f(size)
}

// ErrAllocationLimit is the cause reported when a request exceeds the
// allocator limit.
var ErrAllocationLimit = errors.New("allocation limit exceeded")

// HeapAllocator allocates from the Go heap. A positive Limit caps the size
// of a single allocation; zero means unlimited.
type HeapAllocator struct {
	Limit int
}

// Allocate returns a new zeroed slice. Runtime allocation panics are
// returned as errors.
func (a HeapAllocator) Allocate(size int) (buf []byte, err error) {
	if size < 0 {
		return nil, fmt.Errorf("negative allocation size %d", size)
	}
	if a.Limit > 0 && size > a.Limit {
		return nil, fmt.Errorf("%w: requested %d, limit %d", ErrAllocationLimit, size, a.Limit)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("allocation of %d bytes failed: %v", size, r)
		}
	}()

	return make([]byte, size), nil
}

var defaultAllocator Allocator = HeapAllocator{}
