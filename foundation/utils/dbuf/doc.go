// Package dbuf implements a growable byte buffer for assembling text records.
//
// Package: dbuf
// Title: Chunked Growable Buffer
// Description: An append-only byte buffer that tracks used and allocated
//              sizes separately and grows in fixed-size chunks. Used by the
//              record encoder to build delimited records with amortized
//              O(1) appends.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation
//
// # Growth Policy
//
// When an append needs more room than is allocated, the new allocation is
// NextCapacity(used+len+1, chunkSize): the required size rounded down to a
// chunk boundary plus one extra chunk. An exact multiple still gets the
// extra chunk. The allocated size is therefore always zero or a positive
// multiple of the chunk size, and always leaves room for the terminator.
//
// # Failure Behavior
//
// Storage comes from an Allocator. If it fails, the append returns an
// OUT_OF_MEMORY error and the buffer keeps its previous content and size.
// A nil receiver, a chunk size below one and nil input all yield
// INVALID_ARGUMENT.
//
// # Usage
//
//	buf, err := dbuf.New(256)
//	if err != nil {
//		return err
//	}
//	defer buf.Release()
//
//	_ = buf.Append("host_name=")
//	_ = buf.Append(name)
//	fmt.Println(buf.String())
package dbuf
