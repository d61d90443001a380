// File: move_test.go
// Title: Portable Move Tests
// Description: Tests for rename, the cross-device copy fallback and its
//              failure paths.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Rewritten for the cross-device fallback

package filex

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
)

// forceCrossDevice makes every rename fail as if src and dst were on
// different filesystems.
func forceCrossDevice(t *testing.T) {
	t.Helper()
	if errCrossDevice == nil {
		t.Skip("no cross-device error on this platform")
	}
	orig := rename
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errCrossDevice}
	}
	t.Cleanup(func() { rename = orig })
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestMoveRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.spool")
	dst := filepath.Join(dir, "b.spool")
	writeFile(t, src, []byte("hello"))

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if Exists(src) {
		t.Error("source still exists after Move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read destination: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("destination = %q, want %q", got, "hello")
	}
}

func TestMoveCrossDeviceFallback(t *testing.T) {
	forceCrossDevice(t)

	tests := []struct {
		name    string
		content []byte
		opts    []MoveOptions
	}{
		{"empty file", []byte{}, nil},
		{"small file", []byte("hello"), nil},
		{"exactly one block", bytes.Repeat([]byte{'x'}, 8*1024), []MoveOptions{{BufferSize: 8 * 1024}}},
		{"multiple blocks", bytes.Repeat([]byte("0123456789"), 20000), nil},
		{"tiny blocks", []byte("abcdefghijklmnopqrstuvwxyz"), []MoveOptions{{BufferSize: 3, Sync: true}}},
		{"binary with NULs", []byte{0, 1, 2, 0, 255, 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "src.dat")
			dst := filepath.Join(dir, "dst.dat")
			writeFile(t, src, tt.content)

			if err := Move(src, dst, tt.opts...); err != nil {
				t.Fatalf("Move failed: %v", err)
			}

			if Exists(src) {
				t.Error("source still exists after fallback")
			}
			got, err := os.ReadFile(dst)
			if err != nil {
				t.Fatalf("Failed to read destination: %v", err)
			}
			if !bytes.Equal(got, tt.content) {
				t.Errorf("destination differs: got %d bytes, want %d", len(got), len(tt.content))
			}
		})
	}
}

func TestMoveCrossDeviceOverwritesDestination(t *testing.T) {
	forceCrossDevice(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "src.dat")
	dst := filepath.Join(dir, "dst.dat")
	writeFile(t, src, []byte("new"))
	writeFile(t, dst, []byte("old content that is longer"))

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "new" {
		t.Errorf("destination = %q, want %q", got, "new")
	}
}

func TestMoveMissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing")
	dst := filepath.Join(dir, "dst")

	err := Move(src, dst)
	if err == nil {
		t.Fatal("Move of missing source succeeded")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
	if !idoerr.HasCode(err, idoerr.CodeIOFailure) {
		t.Errorf("error code = %s, want IO_FAILURE", idoerr.GetCode(err))
	}
	if Exists(dst) {
		t.Error("destination was created for a missing source")
	}
}

func TestMoveFallbackDestinationOpenFails(t *testing.T) {
	forceCrossDevice(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "src.dat")
	dst := filepath.Join(dir, "no", "such", "dir", "dst.dat")
	writeFile(t, src, []byte("keep me"))

	err := Move(src, dst)
	if err == nil {
		t.Fatal("Move into missing directory succeeded")
	}
	if !IsCrossDevice(err) {
		t.Errorf("error %v should report the original rename failure", err)
	}

	got, readErr := os.ReadFile(src)
	if readErr != nil || string(got) != "keep me" {
		t.Errorf("source changed: %q, %v", got, readErr)
	}
}

func TestMoveFallbackSourceOpenFailsTruncatesDestination(t *testing.T) {
	forceCrossDevice(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "missing.dat")
	dst := filepath.Join(dir, "dst.dat")
	writeFile(t, dst, []byte("previous content"))

	err := Move(src, dst)
	if err == nil {
		t.Fatal("Move of missing source succeeded")
	}
	if !IsCrossDevice(err) {
		t.Errorf("error %v should report the original rename failure", err)
	}
	if v, ok := idoerrors.ExtractDetails(err)["destination_truncated"]; !ok || v != true {
		t.Errorf("destination_truncated detail = %v, %v; want true", v, ok)
	}

	info, statErr := os.Stat(dst)
	if statErr != nil {
		t.Fatalf("destination vanished: %v", statErr)
	}
	if info.Size() != 0 {
		t.Errorf("destination size = %d, want 0", info.Size())
	}
}

func TestMoveFallbackRemoveFails(t *testing.T) {
	forceCrossDevice(t)

	origRemove := remove
	remove = func(name string) error {
		return &os.PathError{Op: "remove", Path: name, Err: fs.ErrPermission}
	}
	t.Cleanup(func() { remove = origRemove })

	dir := t.TempDir()
	src := filepath.Join(dir, "src.dat")
	dst := filepath.Join(dir, "dst.dat")
	writeFile(t, src, []byte("data"))

	err := Move(src, dst)
	if !idoerr.HasCode(err, idoerr.CodeIOFailure) {
		t.Fatalf("Move error = %v, want IO_FAILURE", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("error %v does not wrap fs.ErrPermission", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "data" {
		t.Errorf("destination = %q, want copied data", got)
	}
}

func TestMoveEmptyPaths(t *testing.T) {
	tests := []struct {
		name     string
		src, dst string
		argument string
	}{
		{"empty source", "", "dst", "src"},
		{"empty destination", "src", "", "dst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Move(tt.src, tt.dst)
			if !idoerr.HasCode(err, idoerr.CodeInvalidArgument) {
				t.Fatalf("Move(%q, %q) = %v, want INVALID_ARGUMENT", tt.src, tt.dst, err)
			}
			if got := idoerrors.ExtractDetails(err)["argument"]; got != tt.argument {
				t.Errorf("argument detail = %v, want %s", got, tt.argument)
			}
		})
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestCopyBlocksStopsOnWriteError(t *testing.T) {
	src := strings.NewReader(strings.Repeat("z", 100))
	n, err := copyBlocks(&failingWriter{after: 2}, src, 10)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("copyBlocks error = %v, want disk full", err)
	}
	if n != 20 {
		t.Errorf("copyBlocks wrote %d bytes, want 20", n)
	}
}

func TestGetPooledBufferSizes(t *testing.T) {
	tests := []struct {
		request int
		want    int
	}{
		{1, 1},
		{8 * 1024, 8 * 1024},
		{20000, 20000},
		{64 * 1024, 64 * 1024},
		{1 << 20, 64 * 1024},
	}

	for _, tt := range tests {
		buf, release := getPooledBuffer(tt.request)
		if len(buf) != tt.want {
			t.Errorf("getPooledBuffer(%d) len = %d, want %d", tt.request, len(buf), tt.want)
		}
		release()
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1 << 50, "1.0 PB"},
		{1 << 60, "1.0 EB"},
		{math.MaxInt64, "8.0 EB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestPathPredicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, []byte("x"))
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name          string
		path          string
		exists, isDir bool
	}{
		{"file", file, true, false},
		{"dir", dir, true, true},
		{"missing", missing, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exists(tt.path); got != tt.exists {
				t.Errorf("Exists() = %v, want %v", got, tt.exists)
			}
			if got := IsDir(tt.path); got != tt.isDir {
				t.Errorf("IsDir() = %v, want %v", got, tt.isDir)
			}
		})
	}

	if _, err := Size(missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Size(missing) error = %v", err)
	}
}
