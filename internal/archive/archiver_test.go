package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idolog "github.com/msto63/idoutils/foundation/core/log"
)

type failingCatalog struct {
	*MemoryCatalog
}

func (c failingCatalog) Record(ctx context.Context, entry *Entry) error {
	return errCatalogDown("record")
}

func errCatalogDown(op string) error {
	return idoerr.New("catalog unavailable").WithCode(idoerr.CodeStorageError).WithOperation("archive." + op)
}

func newTestArchiver(t *testing.T, catalog Catalog) (*Archiver, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	logger := idolog.NewWithConfig(idolog.Config{
		Level:  idolog.LevelDebug,
		Format: idolog.FormatText,
		Output: &out,
	})

	a, err := NewArchiver(Config{Dir: filepath.Join(t.TempDir(), "archive")}, catalog, logger)
	if err != nil {
		t.Fatalf("NewArchiver() error = %v", err)
	}
	a.now = func() time.Time { return time.Date(2025, 12, 6, 14, 30, 5, 0, time.UTC) }
	a.newID = func() string { return "3f2b9c1e-aaaa-bbbb-cccc-000000000000" }
	return a, &out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDestinationName(t *testing.T) {
	at := time.Date(2025, 12, 6, 14, 30, 5, 0, time.FixedZone("CET", 3600))
	id := "3f2b9c1e-1234-5678-9abc-def012345678"

	tests := []struct {
		path string
		want string
	}{
		{"/spool/ido2db.spool", "ido2db-20251206T133005Z-3f2b9c1e.spool"},
		{"events", "events-20251206T133005Z-3f2b9c1e"},
		{"/tmp/archive.tar.gz", "archive.tar-20251206T133005Z-3f2b9c1e.gz"},
		{"/tmp/.hidden", "file-20251206T133005Z-3f2b9c1e.hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DestinationName(tt.path, at, id); got != tt.want {
				t.Errorf("DestinationName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if got := DestinationName("a.log", at, "abc"); got != "a-20251206T133005Z-abc.log" {
		t.Errorf("short id: got %q", got)
	}
}

func TestNewArchiverValidation(t *testing.T) {
	if _, err := NewArchiver(Config{}, NewMemoryCatalog(), nil); !idoerr.HasCode(err, idoerr.CodeInvalidArgument) {
		t.Errorf("empty dir: error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := NewArchiver(Config{Dir: t.TempDir()}, nil, nil); !idoerr.HasCode(err, idoerr.CodeInvalidArgument) {
		t.Errorf("nil catalog: error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestArchiveMovesAndRecords(t *testing.T) {
	catalog := NewMemoryCatalog()
	a, out := newTestArchiver(t, catalog)

	src := filepath.Join(t.TempDir(), "ido2db.spool")
	writeFile(t, src, "hoststatus:\nhost=web01\n999\n\n")

	entry, err := a.Archive(context.Background(), src)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	wantDst := filepath.Join(a.Dir(), "ido2db-20251206T143005Z-3f2b9c1e.spool")
	if entry.Destination != wantDst {
		t.Errorf("Destination = %q, want %q", entry.Destination, wantDst)
	}
	if entry.Size != 28 {
		t.Errorf("Size = %d, want 28", entry.Size)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	got, err := os.ReadFile(wantDst)
	if err != nil || string(got) != "hoststatus:\nhost=web01\n999\n\n" {
		t.Errorf("archived content = %q, %v", got, err)
	}

	entries, _ := a.Catalog().List(context.Background(), 0)
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Errorf("catalog entries = %v", entries)
	}

	if !strings.Contains(out.String(), "file archived") {
		t.Errorf("log output missing archive message: %q", out.String())
	}
}

func TestArchiveMissingSource(t *testing.T) {
	a, out := newTestArchiver(t, NewMemoryCatalog())

	_, err := a.Archive(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !idoerr.HasCode(err, idoerr.CodeIOFailure) {
		t.Fatalf("error = %v, want IO_FAILURE", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OS error not reachable: %v", err)
	}
	if !strings.Contains(out.String(), "archive.move failed") {
		t.Errorf("log output missing failure: %q", out.String())
	}

	stats, _ := a.Catalog().Stats(context.Background())
	if stats.Count != 0 {
		t.Errorf("failed move was recorded")
	}
}

func TestArchiveCatalogFailure(t *testing.T) {
	a, _ := newTestArchiver(t, failingCatalog{NewMemoryCatalog()})

	src := filepath.Join(t.TempDir(), "data.spool")
	writeFile(t, src, "x")

	entry, err := a.Archive(context.Background(), src)
	if !IsStorageError(err) {
		t.Fatalf("error = %v, want STORAGE_ERROR", err)
	}
	if entry == nil {
		t.Fatal("entry should describe the moved file")
	}
	if _, statErr := os.Stat(entry.Destination); statErr != nil {
		t.Errorf("moved file missing: %v", statErr)
	}
}

func TestArchiveArguments(t *testing.T) {
	a, _ := newTestArchiver(t, NewMemoryCatalog())

	if _, err := a.Archive(context.Background(), ""); !idoerr.HasCode(err, idoerr.CodeInvalidArgument) {
		t.Errorf("empty path: error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Archive(ctx, "whatever"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: error = %v", err)
	}
}

func TestIsArchivable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "")

	if !IsArchivable(file) {
		t.Error("regular file should be archivable")
	}
	if IsArchivable(dir) {
		t.Error("directory should not be archivable")
	}
	if IsArchivable(filepath.Join(dir, "nope")) {
		t.Error("missing file should not be archivable")
	}
}
