// Package spool appends encoded records to a spool file and rotates it by
// size or age. Rotated files are handed to an archiver.
package spool

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	idolog "github.com/msto63/idoutils/foundation/core/log"
	"github.com/msto63/idoutils/foundation/utils/dbuf"
	"github.com/msto63/idoutils/foundation/utils/filex"
	"github.com/msto63/idoutils/internal/archive"
	"github.com/msto63/idoutils/internal/record"
)

// Extension is appended to the spool name
const Extension = ".spool"

// rotatedLayout names rotated files kept in the spool directory
const rotatedLayout = "20060102T150405.000000000Z"

// Archiver receives rotated spool files
type Archiver interface {
	Archive(ctx context.Context, path string) (*archive.Entry, error)
}

// Config holds spool settings
type Config struct {
	Dir            string
	Name           string
	MaxSize        int64         // rotate once the file reaches this size
	RotateInterval time.Duration // rotate once the file is this old, 0 disables
	ChunkSize      int           // encoder buffer growth step
	MaxAllocation  int           // encoder buffer limit, 0 means unlimited
}

// DefaultConfig returns default spool settings
func DefaultConfig() Config {
	return Config{
		Dir:            "./data/spool",
		Name:           "ido2db",
		MaxSize:        10 * 1024 * 1024,
		RotateInterval: time.Hour,
		ChunkSize:      dbuf.DefaultChunkSize,
	}
}

// Stats describes the current spool file
type Stats struct {
	Path      string
	Size      int64
	OpenedAt  time.Time
	Records   int64
	Rotations int
}

// spoolFile is the part of *os.File the spool writes through
type spoolFile interface {
	io.WriteCloser
	Truncate(size int64) error
}

// Spool is safe for concurrent use
type Spool struct {
	cfg      Config
	path     string
	archiver Archiver
	logger   *idolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	file      spoolFile
	enc       *record.Encoder
	size      int64
	openedAt  time.Time
	records   int64
	rotations int
	closed    bool
}

// Open opens or creates <dir>/<name>.spool. An existing file is appended to.
// With a nil archiver rotated files stay in the spool directory under a
// timestamped name.
func Open(cfg Config, archiver Archiver, logger *idolog.Logger) (*Spool, error) {
	if cfg.Dir == "" {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleSpool, "open", "dir", "spool directory is empty")
	}
	if cfg.Name == "" || filepath.Base(cfg.Name) != cfg.Name {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleSpool, "open", "name", "name must be a plain file name")
	}
	if cfg.MaxSize <= 0 {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleSpool, "open", "max_size", "must be positive")
	}
	if cfg.RotateInterval < 0 {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleSpool, "open", "rotate_interval", "must not be negative")
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = dbuf.DefaultChunkSize
	}
	if logger == nil {
		logger = idolog.NewNop()
	}

	opts := dbuf.DefaultOptions()
	if cfg.MaxAllocation > 0 {
		opts.Allocator = dbuf.HeapAllocator{Limit: cfg.MaxAllocation}
	}
	enc, err := record.NewEncoder(cfg.ChunkSize, opts)
	if err != nil {
		return nil, err
	}

	if err := filex.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, idoerrors.IOFailure(idoerrors.ModuleSpool, "open", cfg.Dir, err)
	}

	s := &Spool{
		cfg:      cfg,
		path:     filepath.Join(cfg.Dir, cfg.Name+Extension),
		archiver: archiver,
		logger:   logger.WithField("component", "spool").WithField("spool", cfg.Name),
		now:      time.Now,
		enc:      enc,
	}
	if err := s.openFile(); err != nil {
		enc.Release()
		return nil, err
	}
	return s, nil
}

// Path returns the path of the active spool file
func (s *Spool) Path() string {
	return s.path
}

// Stats returns a snapshot of the spool state
func (s *Spool) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Path:      s.path,
		Size:      s.size,
		OpenedAt:  s.openedAt,
		Records:   s.records,
		Rotations: s.rotations,
	}
}

// Write encodes records and appends them to the spool file in one write.
// The file is rotated afterwards if it reached its size or age limit. A
// failed rotation is logged and does not fail the write.
func (s *Spool) Write(ctx context.Context, records ...record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed("write")
	}
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if err := s.enc.Encode(r); err != nil {
			s.enc.Reset()
			return err
		}
	}

	n, err := s.enc.WriteTo(s.file)
	if err != nil {
		s.enc.Reset()
		s.dropPartialLocked(n)
		return idoerrors.IOFailure(idoerrors.ModuleSpool, "write", s.path, err)
	}
	s.size += n
	s.records += int64(len(records))

	if s.dueLocked() {
		s.rotateLocked(ctx)
	}
	return nil
}

// Rotate closes the current file, hands it to the archiver and opens a
// fresh one. An empty file is not rotated and the returned entry is nil.
func (s *Spool) Rotate(ctx context.Context) (*archive.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errClosed("rotate")
	}
	return s.rotateLocked(ctx)
}

// Close closes the spool file. The file is left in place for the next Open.
func (s *Spool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.enc.Release()

	if err := s.file.Close(); err != nil {
		return idoerrors.IOFailure(idoerrors.ModuleSpool, "close", s.path, err)
	}
	return nil
}

// dropPartialLocked cuts a partially written batch off the file end so the
// next batch starts on a record boundary.
func (s *Spool) dropPartialLocked(written int64) {
	if written == 0 {
		return
	}
	if err := s.file.Truncate(s.size); err != nil {
		s.size += written
		s.logger.ErrorWithErr("cannot remove partial batch from spool file", err,
			idolog.Fields{"bytes": written})
	}
}

func (s *Spool) dueLocked() bool {
	if s.size >= s.cfg.MaxSize {
		return true
	}
	return s.cfg.RotateInterval > 0 && s.now().Sub(s.openedAt) >= s.cfg.RotateInterval
}

func (s *Spool) rotateLocked(ctx context.Context) (*archive.Entry, error) {
	if s.size == 0 {
		s.openedAt = s.now()
		return nil, nil
	}

	if err := s.file.Close(); err != nil {
		return nil, idoerrors.IOFailure(idoerrors.ModuleSpool, "rotate", s.path, err)
	}

	entry, err := s.handOff(ctx)
	if err != nil {
		s.logger.ErrorWithErr("rotation failed, continuing in current file", err)
	}

	// Reopen in both cases so that writes continue.
	if openErr := s.openFile(); openErr != nil {
		s.closed = true
		return entry, openErr
	}
	if err != nil && entry == nil {
		return nil, err
	}

	s.rotations++
	s.logger.Info("spool rotated", idolog.Fields{"rotations": s.rotations})
	return entry, err
}

// handOff moves the closed spool file out of the way
func (s *Spool) handOff(ctx context.Context) (*archive.Entry, error) {
	if s.archiver != nil {
		return s.archiver.Archive(ctx, s.path)
	}

	at := s.now().UTC()
	dst := filepath.Join(s.cfg.Dir, s.cfg.Name+"-"+at.Format(rotatedLayout)+Extension)
	if err := filex.Move(s.path, dst); err != nil {
		return nil, err
	}
	return &archive.Entry{
		Source:      s.path,
		Destination: dst,
		Size:        s.size,
		ArchivedAt:  at,
	}, nil
}

func (s *Spool) openFile() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return idoerrors.IOFailure(idoerrors.ModuleSpool, "open", s.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return idoerrors.IOFailure(idoerrors.ModuleSpool, "open", s.path, err)
	}

	s.file = f
	s.size = info.Size()
	s.openedAt = s.now()
	return nil
}

func errClosed(op string) error {
	return idoerrors.NewErrorBuilder(idoerrors.ModuleSpool).
		Operation(op).
		Message("spool is closed").
		Code(idoerr.CodeInternal).
		Build()
}
