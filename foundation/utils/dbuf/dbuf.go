// File: dbuf.go
// Title: Growable Byte Buffer
// Description: Append-only byte buffer that grows in fixed-size chunks and
//              keeps a zero terminator after the logical content.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package dbuf

import (
	"fmt"
	"math"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
)

// DefaultChunkSize is the growth granularity used when none is configured.
const DefaultChunkSize = 2048

// Buffer is an append-only byte buffer. Storage is allocated in multiples of
// the chunk size and always holds one byte past the content for a zero
// terminator.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data      []byte
	used      int
	allocated int
	chunkSize int
	allocator Allocator
}

// Options configures a Buffer created with New.
type Options struct {
	// Allocator supplies storage on growth. Nil selects the heap allocator.
	Allocator Allocator
}

// DefaultOptions returns the default buffer options.
func DefaultOptions() Options {
	return Options{Allocator: defaultAllocator}
}

// New returns an empty buffer growing in steps of chunkSize.
func New(chunkSize int, options ...Options) (*Buffer, error) {
	opts := DefaultOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	b := &Buffer{allocator: opts.Allocator}
	if err := b.Init(chunkSize); err != nil {
		return nil, err
	}
	return b, nil
}

// Init resets b to the empty state with the given chunk size. Any storage
// held by b is dropped without being released explicitly.
func (b *Buffer) Init(chunkSize int) error {
	if b == nil {
		return idoerrors.DbufInvalidArgument("init", "buffer", "buffer is nil")
	}
	if chunkSize < 1 {
		return idoerrors.DbufInvalidArgument("init", "chunk_size",
			fmt.Sprintf("chunk size must be at least 1, got %d", chunkSize))
	}

	b.data = nil
	b.used = 0
	b.allocated = 0
	b.chunkSize = chunkSize
	if b.allocator == nil {
		b.allocator = defaultAllocator
	}
	return nil
}

// NextCapacity returns the allocation size for a buffer that must hold
// required bytes: required rounded down to a chunk boundary plus one full
// chunk. The result is always strictly greater than required.
func NextCapacity(required, chunkSize int) (int, error) {
	if chunkSize < 1 {
		return 0, idoerrors.DbufInvalidArgument("next_capacity", "chunk_size",
			fmt.Sprintf("chunk size must be at least 1, got %d", chunkSize))
	}
	if required < 0 {
		return 0, idoerrors.DbufInvalidArgument("next_capacity", "required",
			fmt.Sprintf("required size must not be negative, got %d", required))
	}

	chunks := required/chunkSize + 1
	if chunks > math.MaxInt/chunkSize {
		return 0, idoerrors.DbufOutOfMemory("next_capacity", required,
			fmt.Errorf("capacity for %d bytes overflows int", required))
	}
	return chunks * chunkSize, nil
}

// Append copies text to the end of the buffer.
func (b *Buffer) Append(text string) error {
	if b == nil {
		return idoerrors.DbufInvalidArgument("append", "buffer", "buffer is nil")
	}
	return b.append("append", len(text), func(dst []byte) { copy(dst, text) })
}

// AppendBytes copies p to the end of the buffer. A nil p is rejected;
// an empty non-nil p only ensures the terminator is present.
func (b *Buffer) AppendBytes(p []byte) error {
	if b == nil {
		return idoerrors.DbufInvalidArgument("append_bytes", "buffer", "buffer is nil")
	}
	if p == nil {
		return idoerrors.DbufInvalidArgument("append_bytes", "text", "text is nil")
	}
	return b.append("append_bytes", len(p), func(dst []byte) { copy(dst, p) })
}

// Write implements io.Writer on top of AppendBytes.
func (b *Buffer) Write(p []byte) (int, error) {
	if p == nil {
		p = []byte{}
	}
	if err := b.AppendBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *Buffer) append(op string, n int, fill func(dst []byte)) error {
	if b.chunkSize < 1 {
		return idoerrors.DbufInvalidArgument(op, "buffer", "buffer is not initialized")
	}
	if n > math.MaxInt-b.used-1 {
		return idoerrors.DbufOutOfMemory(op, n, fmt.Errorf("size of %d+%d bytes overflows int", b.used, n))
	}

	newLogical := b.used + n + 1
	if newLogical > b.allocated {
		if err := b.grow(op, newLogical); err != nil {
			return err
		}
	}

	fill(b.data[b.used : b.used+n])
	b.used += n
	b.data[b.used] = 0
	return nil
}

// grow replaces the storage with one of NextCapacity(required) bytes. On any
// failure the buffer is left exactly as it was.
func (b *Buffer) grow(op string, required int) error {
	capacity, err := NextCapacity(required, b.chunkSize)
	if err != nil {
		return err
	}

	data, err := b.allocator.Allocate(capacity)
	if err != nil {
		return idoerrors.DbufOutOfMemory(op, capacity, err)
	}
	if len(data) < capacity {
		return idoerrors.DbufOutOfMemory(op, capacity,
			fmt.Errorf("allocator returned %d bytes", len(data)))
	}
	data = data[:capacity]

	copy(data, b.data[:b.used])
	// Storage from a custom allocator may not be zeroed.
	data[b.used] = 0

	b.data = data
	b.allocated = capacity
	return nil
}

// Release drops the storage and resets the counters. Calling it again on
// an already released buffer is a no-op.
func (b *Buffer) Release() error {
	if b == nil {
		return idoerrors.DbufInvalidArgument("release", "buffer", "buffer is nil")
	}
	b.data = nil
	b.used = 0
	b.allocated = 0
	return nil
}

// Reset keeps the storage but empties the content.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.used = 0
	if b.allocated > 0 {
		b.data[0] = 0
	}
}

// Len returns the number of content bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.used
}

// Cap returns the number of allocated bytes, terminator slot included.
func (b *Buffer) Cap() int {
	if b == nil {
		return 0
	}
	return b.allocated
}

// ChunkSize returns the growth granularity.
func (b *Buffer) ChunkSize() int {
	if b == nil {
		return 0
	}
	return b.chunkSize
}

// Bytes returns the content without the terminator. The slice aliases the
// buffer storage and is valid until the next append or Release.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.data == nil {
		return nil
	}
	return b.data[:b.used]
}

// Terminated returns the content followed by its zero terminator, or nil
// when nothing has been appended yet.
func (b *Buffer) Terminated() []byte {
	if b == nil || b.data == nil {
		return nil
	}
	return b.data[:b.used+1]
}

// String returns a copy of the content.
func (b *Buffer) String() string {
	if b == nil {
		return "<nil>"
	}
	return string(b.data[:b.used])
}

// IsOutOfMemory reports whether err is a buffer growth failure.
func IsOutOfMemory(err error) bool {
	return idoerr.HasCode(err, idoerr.CodeOutOfMemory)
}
