// File: move.go
// Title: Portable File Move
// Description: Move renames a file and falls back to copy and delete when
//              source and destination are on different filesystems.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Rename with copy fallback on any failure
// - 2026-10-19 v0.2.0: Fallback restricted to cross-device failures, coded errors

package filex

import (
	"io"
	"os"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
)

// DefaultMoveBufferSize is the block size of the copy fallback.
const DefaultMoveBufferSize = largeBufferSize

// Replaced in tests.
var (
	rename = os.Rename
	remove = os.Remove
)

// MoveOptions controls the copy fallback of Move.
type MoveOptions struct {
	BufferSize    int         // Copy block size, capped at 64KB
	Mode          os.FileMode // Mode of a newly created destination
	Sync          bool        // Fsync the destination before closing it
	RemovePartial bool        // Remove the destination when the copy fails midway
}

// DefaultMoveOptions returns default options for Move
func DefaultMoveOptions() MoveOptions {
	return MoveOptions{
		BufferSize:    DefaultMoveBufferSize,
		Mode:          0644,
		RemovePartial: true,
	}
}

// Move moves src to dst. It first tries a rename. When the rename fails
// because the paths are on different devices, the file is copied block by
// block and the source is removed afterwards. Any other rename failure is
// returned as is.
//
// If the destination can be opened but the source cannot, the destination
// has already been truncated and is left that way; the returned error
// carries the detail destination_truncated=true.
func Move(src, dst string, options ...MoveOptions) error {
	opts := DefaultMoveOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultMoveBufferSize
	}
	if opts.Mode == 0 {
		opts.Mode = 0644
	}

	if src == "" {
		return idoerrors.FilexInvalidArgument("move", "src")
	}
	if dst == "" {
		return idoerrors.FilexInvalidArgument("move", "dst")
	}

	renameErr := rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if !IsCrossDevice(renameErr) {
		return renameFailure(src, dst, renameErr)
	}

	return copyAndRemove(src, dst, renameErr, opts)
}

func copyAndRemove(src, dst string, renameErr error, opts MoveOptions) error {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, opts.Mode)
	if err != nil {
		return renameFailure(src, dst, renameErr).
			WithDetail("fallback_error", err.Error())
	}

	in, err := os.Open(src)
	if err != nil {
		out.Close()
		return renameFailure(src, dst, renameErr).
			WithDetail("fallback_error", err.Error()).
			WithDetail("destination_truncated", true)
	}

	if _, err := copyBlocks(out, in, opts.BufferSize); err != nil {
		in.Close()
		out.Close()
		if opts.RemovePartial {
			_ = remove(dst)
		}
		return idoerrors.FilexIOFailure("move.copy", dst, err).WithDetail("source", src)
	}

	if opts.Sync {
		if err := out.Sync(); err != nil {
			in.Close()
			out.Close()
			return idoerrors.FilexIOFailure("move.sync", dst, err)
		}
	}

	in.Close()
	if err := out.Close(); err != nil {
		return idoerrors.FilexIOFailure("move.close", dst, err)
	}

	if err := remove(src); err != nil {
		return idoerrors.FilexIOFailure("move.remove", src, err).WithDetail("destination", dst)
	}
	return nil
}

// copyBlocks streams src into dst through a pooled scratch buffer. The
// buffer goes back to its pool on every return path.
func copyBlocks(dst io.Writer, src io.Reader, blockSize int) (int64, error) {
	buf, release := getPooledBuffer(blockSize)
	defer release()

	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			m, writeErr := dst.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, writeErr
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func renameFailure(src, dst string, err error) *idoerr.Error {
	return idoerrors.FilexIOFailure("move.rename", src, err).WithDetail("destination", dst)
}
