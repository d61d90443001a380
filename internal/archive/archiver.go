// Package archive moves finished spool files into an archive directory,
// records every move in a catalog and can watch an inbox for new files.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	idolog "github.com/msto63/idoutils/foundation/core/log"
	"github.com/msto63/idoutils/foundation/utils/filex"
)

// timestampLayout is used in archived file names
const timestampLayout = "20060102T150405Z"

// Config holds archiver settings
type Config struct {
	Dir         string
	MoveOptions filex.MoveOptions
	Compress    bool // store archived files zstd compressed
}

// Archiver moves files into the archive directory. The archive may live on
// another filesystem than the files it receives.
type Archiver struct {
	dir      string
	moveOpts filex.MoveOptions
	compress bool
	catalog  Catalog
	logger   *idolog.Logger

	now   func() time.Time
	newID func() string
}

// NewArchiver creates the archive directory if needed and returns an
// archiver that records moves in catalog.
func NewArchiver(cfg Config, catalog Catalog, logger *idolog.Logger) (*Archiver, error) {
	if cfg.Dir == "" {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "new", "dir", "archive directory is empty")
	}
	if catalog == nil {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "new", "catalog", "catalog is nil")
	}
	if logger == nil {
		logger = idolog.NewNop()
	}
	if err := filex.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, idoerrors.IOFailure(idoerrors.ModuleArchive, "new", cfg.Dir, err)
	}

	opts := cfg.MoveOptions
	if opts.BufferSize == 0 {
		opts = filex.DefaultMoveOptions()
	}

	return &Archiver{
		dir:      cfg.Dir,
		moveOpts: opts,
		compress: cfg.Compress,
		catalog:  catalog,
		logger:   logger.WithField("component", "archive"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}, nil
}

// Dir returns the archive directory
func (a *Archiver) Dir() string {
	return a.dir
}

// Catalog returns the catalog moves are recorded in
func (a *Archiver) Catalog() Catalog {
	return a.catalog
}

// Archive moves path into the archive and records it. If the move
// succeeds but recording fails, the returned entry describes the moved file
// and the error carries STORAGE_ERROR.
func (a *Archiver) Archive(ctx context.Context, path string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "archive", "path", "path is empty")
	}

	id := a.newID()
	archivedAt := a.now().UTC()
	dst := filepath.Join(a.dir, DestinationName(path, archivedAt, id))

	timer := a.logger.StartTimer("archive.move").
		WithField("source", path).
		WithField("destination", dst)

	if err := filex.Move(path, dst, a.moveOpts); err != nil {
		timer.StopWithError(err)
		return nil, err
	}
	elapsed := timer.Stop()

	size, err := filex.Size(dst)
	if err != nil {
		return nil, idoerrors.IOFailure(idoerrors.ModuleArchive, "archive", dst, err)
	}

	entry := &Entry{
		ID:          id,
		Source:      path,
		Destination: dst,
		Size:        size,
		StoredSize:  size,
		ArchivedAt:  archivedAt,
		DurationMS:  float64(elapsed.Nanoseconds()) / 1e6,
	}

	if a.compress {
		if zdst, stored, err := compressFile(dst); err != nil {
			a.logger.WarnWithErr("compression failed, keeping file uncompressed", err)
		} else {
			entry.Destination = zdst
			entry.StoredSize = stored
			entry.Compressed = true
		}
	}

	if err := a.catalog.Record(ctx, entry); err != nil {
		a.logger.LogError(err)
		return entry, err
	}

	a.logger.Info("file archived", idolog.Fields{
		"source":      path,
		"destination": entry.Destination,
		"bytes":       size,
		"stored":      entry.StoredSize,
	})
	return entry, nil
}

// DestinationName returns <base>-<UTC timestamp>-<first 8 chars of id><ext>
// for the file at path.
func DestinationName(path string, at time.Time, id string) string {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "file"
	}

	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}

	return base + "-" + at.UTC().Format(timestampLayout) + "-" + short + ext
}

// IsArchivable reports whether path names an existing regular file
func IsArchivable(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}
