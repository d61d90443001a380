package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	"github.com/msto63/idoutils/internal/archive"
	"github.com/msto63/idoutils/internal/record"
)

// fakeArchiver moves rotated files into dir and remembers their content
type fakeArchiver struct {
	dir  string
	fail error

	mu       sync.Mutex
	received []string
}

func (a *fakeArchiver) Archive(ctx context.Context, path string) (*archive.Entry, error) {
	if a.fail != nil {
		return nil, a.fail
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, string(data))

	dst := filepath.Join(a.dir, "rotated-"+string(rune('a'+len(a.received)-1)))
	if err := os.Rename(path, dst); err != nil {
		return nil, err
	}
	return &archive.Entry{Source: path, Destination: dst, Size: int64(len(data))}, nil
}

func hostRecord(host string) record.Record {
	return record.Record{
		Type: "hoststatus",
		Fields: []record.Field{
			{Key: "host", Value: host},
			{Key: "output", Value: "PING OK\nrtt=1ms"},
		},
	}
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.RotateInterval = 0
	return cfg
}

func TestOpenValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty dir", func(c *Config) { c.Dir = "" }},
		{"empty name", func(c *Config) { c.Name = "" }},
		{"name with separator", func(c *Config) { c.Name = "a/b" }},
		{"zero max size", func(c *Config) { c.MaxSize = 0 }},
		{"negative interval", func(c *Config) { c.RotateInterval = -time.Second }},
		{"negative chunk", func(c *Config) { c.ChunkSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(&cfg)
			_, err := Open(cfg, nil, nil)
			if !idoerr.HasCode(err, idoerr.CodeInvalidArgument) {
				t.Errorf("Open() error = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestWriteAndReplay(t *testing.T) {
	s, err := Open(testConfig(t), nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("web01"), hostRecord("web02")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write(ctx, hostRecord("db01")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	stats := s.Stats()
	if stats.Records != 3 {
		t.Errorf("Records = %d, want 3", stats.Records)
	}
	info, _ := os.Stat(s.Path())
	if info.Size() != stats.Size {
		t.Errorf("Stats().Size = %d, file size = %d", stats.Size, info.Size())
	}

	var hosts []string
	n, err := Replay(s.Path(), func(r record.Record) error {
		host, _ := r.Get("host")
		hosts = append(hosts, host)
		if out, _ := r.Get("output"); out != "PING OK\nrtt=1ms" {
			t.Errorf("output = %q", out)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if n != 3 || strings.Join(hosts, ",") != "web01,web02,db01" {
		t.Errorf("Replay() = %d %v", n, hosts)
	}
}

func TestWriteRejectsInvalidRecord(t *testing.T) {
	s, err := Open(testConfig(t), nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	err = s.Write(context.Background(), hostRecord("ok"), record.Record{Type: ""})
	if !record.IsFormatError(err) {
		t.Fatalf("Write() error = %v, want FORMAT_ERROR", err)
	}
	if s.Stats().Size != 0 {
		t.Errorf("nothing should be written when a record in the batch is invalid")
	}

	if err := s.Write(context.Background(), hostRecord("next")); err != nil {
		t.Fatalf("Write() after rejection error = %v", err)
	}
	n, _ := Replay(s.Path(), func(record.Record) error { return nil })
	if n != 1 {
		t.Errorf("Replay() = %d records, want 1", n)
	}
}

func TestRotateOnSize(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxSize = 64
	arch := &fakeArchiver{dir: t.TempDir()}

	s, err := Open(cfg, arch, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("web01")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write(ctx, hostRecord("web02")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(arch.received) != 1 {
		t.Fatalf("archiver received %d files, want 1", len(arch.received))
	}
	if !strings.Contains(arch.received[0], "host=web01") || !strings.Contains(arch.received[0], "host=web02") {
		t.Errorf("rotated content = %q", arch.received[0])
	}

	stats := s.Stats()
	if stats.Rotations != 1 || stats.Size != 0 {
		t.Errorf("Stats() = %+v, want one rotation and an empty file", stats)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("fresh spool file missing: %v", err)
	}
}

func TestRotateOnAge(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotateInterval = time.Minute
	arch := &fakeArchiver{dir: t.TempDir()}

	s, err := Open(cfg, arch, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	now := time.Date(2025, 12, 6, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.openedAt = now

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("a")); err != nil {
		t.Fatal(err)
	}
	if len(arch.received) != 0 {
		t.Fatal("rotated too early")
	}

	now = now.Add(time.Minute)
	if err := s.Write(ctx, hostRecord("b")); err != nil {
		t.Fatal(err)
	}
	if len(arch.received) != 1 {
		t.Errorf("archiver received %d files, want 1", len(arch.received))
	}
}

func TestRotateExplicit(t *testing.T) {
	arch := &fakeArchiver{dir: t.TempDir()}
	s, err := Open(testConfig(t), arch, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	entry, err := s.Rotate(ctx)
	if err != nil || entry != nil {
		t.Fatalf("Rotate() on empty spool = %v, %v, want nil, nil", entry, err)
	}

	if err := s.Write(ctx, hostRecord("x")); err != nil {
		t.Fatal(err)
	}
	entry, err = s.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if entry == nil || entry.Source != s.Path() {
		t.Errorf("Rotate() entry = %+v", entry)
	}
}

func TestRotateWithoutArchiver(t *testing.T) {
	cfg := testConfig(t)
	s, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("x")); err != nil {
		t.Fatal(err)
	}
	entry, err := s.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if filepath.Dir(entry.Destination) != cfg.Dir || !strings.HasPrefix(filepath.Base(entry.Destination), "ido2db-") {
		t.Errorf("Destination = %q", entry.Destination)
	}

	n, err := Replay(entry.Destination, func(record.Record) error { return nil })
	if err != nil || n != 1 {
		t.Errorf("Replay(rotated) = %d, %v", n, err)
	}
}

func TestRotateArchiverFailureKeepsData(t *testing.T) {
	boom := errors.New("archive unavailable")
	arch := &fakeArchiver{dir: t.TempDir(), fail: boom}
	s, err := Open(testConfig(t), arch, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("one")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Rotate(ctx); !errors.Is(err, boom) {
		t.Fatalf("Rotate() error = %v, want %v", err, boom)
	}

	if err := s.Write(ctx, hostRecord("two")); err != nil {
		t.Fatalf("Write() after failed rotation error = %v", err)
	}
	n, _ := Replay(s.Path(), func(record.Record) error { return nil })
	if n != 2 {
		t.Errorf("Replay() = %d records, want 2", n)
	}
	if s.Stats().Rotations != 0 {
		t.Errorf("failed rotation was counted")
	}
}

func TestReopenAppends(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	s, err := Open(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Write(ctx, hostRecord("first"))
	s.Close()

	s, err = Open(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Stats().Size == 0 {
		t.Error("existing size not picked up")
	}
	s.Write(ctx, hostRecord("second"))

	n, _ := Replay(s.Path(), func(record.Record) error { return nil })
	if n != 2 {
		t.Errorf("Replay() = %d records, want 2", n)
	}
}

// shortFile writes at most limit bytes per call and then fails
type shortFile struct {
	spoolFile
	limit int
}

var errDiskFull = errors.New("no space left on device")

func (f *shortFile) Write(p []byte) (int, error) {
	n, _ := f.spoolFile.Write(p[:min(f.limit, len(p))])
	return n, errDiskFull
}

func TestFailedWriteLeavesNoPartialRecord(t *testing.T) {
	s, err := Open(testConfig(t), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("web01")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	before := s.Stats().Size

	file := s.file
	s.file = &shortFile{spoolFile: file, limit: 10}
	err = s.Write(ctx, hostRecord("web02"))
	if !idoerr.HasCode(err, idoerr.CodeIOFailure) || !errors.Is(err, errDiskFull) {
		t.Fatalf("Write() error = %v, want IO_FAILURE wrapping the write error", err)
	}
	s.file = file

	if got := s.Stats().Size; got != before {
		t.Errorf("Stats().Size = %d, want %d", got, before)
	}
	if info, _ := os.Stat(s.Path()); info.Size() != before {
		t.Errorf("file size = %d, want %d", info.Size(), before)
	}

	if err := s.Write(ctx, hostRecord("web03")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var hosts []string
	if _, err := Replay(s.Path(), func(r record.Record) error {
		host, _ := r.Get("host")
		hosts = append(hosts, host)
		return nil
	}); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if strings.Join(hosts, ",") != "web01,web03" {
		t.Errorf("replayed hosts = %v, want [web01 web03]", hosts)
	}
}

func TestClosedSpool(t *testing.T) {
	s, err := Open(testConfig(t), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.Write(context.Background(), hostRecord("x")); err == nil {
		t.Error("Write() after Close() should fail")
	}
	if _, err := s.Rotate(context.Background()); err == nil {
		t.Error("Rotate() after Close() should fail")
	}
}

func TestReplayMissingFile(t *testing.T) {
	_, err := Replay(filepath.Join(t.TempDir(), "missing.spool"), func(record.Record) error { return nil })
	if !idoerr.HasCode(err, idoerr.CodeIOFailure) {
		t.Errorf("error = %v, want IO_FAILURE", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxSize = 512
	arch := &fakeArchiver{dir: t.TempDir()}
	s, err := Open(cfg, arch, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := s.Write(context.Background(), hostRecord("h")); err != nil {
					t.Errorf("Write() error = %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if got := s.Stats().Records; got != 160 {
		t.Errorf("Records = %d, want 160", got)
	}

	total := 0
	for _, content := range arch.received {
		total += strings.Count(content, "999\n\n")
	}
	n, _ := Replay(s.Path(), func(record.Record) error { return nil })
	if total+n != 160 {
		t.Errorf("archived %d + active %d records, want 160", total, n)
	}
}

func TestRotateIntoCompressedArchive(t *testing.T) {
	a, err := archive.NewArchiver(archive.Config{
		Dir:      filepath.Join(t.TempDir(), "archive"),
		Compress: true,
	}, archive.NewMemoryCatalog(), nil)
	if err != nil {
		t.Fatalf("NewArchiver() error = %v", err)
	}

	s, err := Open(testConfig(t), a, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, hostRecord("web01"), hostRecord("web02")); err != nil {
		t.Fatal(err)
	}
	entry, err := s.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if !entry.Compressed {
		t.Fatalf("entry not compressed: %+v", entry)
	}

	var hosts []string
	n, err := Replay(entry.Destination, func(r record.Record) error {
		h, _ := r.Get("host")
		hosts = append(hosts, h)
		return nil
	})
	if err != nil || n != 2 {
		t.Fatalf("Replay(compressed) = %d, %v", n, err)
	}
	if strings.Join(hosts, ",") != "web01,web02" {
		t.Errorf("hosts = %v", hosts)
	}
}
