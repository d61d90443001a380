package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistryOverallStatus(t *testing.T) {
	fixed := func(name string, s Status) Checker {
		return NewChecker(name, func(ctx context.Context) CheckResult {
			return CheckResult{Status: s}
		})
	}

	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("idoutils")
			for i, s := range tt.statuses {
				r.Register(fixed(string(rune('a'+i)), s))
			}

			report := r.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.statuses))
			}
		})
	}
}

func TestRegistrySortsAndNamesResults(t *testing.T) {
	r := NewRegistry("idoutils")
	for _, name := range []string{"spool", "archive", "catalog"} {
		r.Register(NewChecker(name, func(ctx context.Context) CheckResult {
			return CheckResult{Status: StatusHealthy}
		}))
	}

	report := r.Check(context.Background())
	got := []string{report.Checks[0].Name, report.Checks[1].Name, report.Checks[2].Name}
	want := []string{"archive", "catalog", "spool"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Checks order = %v, want %v", got, want)
			break
		}
	}
	if report.String() != "idoutils: healthy (3 checks)" {
		t.Errorf("String() = %q", report.String())
	}
}

func TestWritableDirCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want Status
	}{
		{"writable", dir, StatusHealthy},
		{"missing", filepath.Join(dir, "missing"), StatusDegraded},
		{"not a directory", file, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WritableDirCheck("dir", tt.dir).Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v (%s), want %v", result.Status, result.Message, tt.want)
			}
		})
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}
}

func TestFileSizeCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ido2db.spool")

	if got := FileSizeCheck("spool", path, 10).Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("missing file: Status = %v", got.Status)
	}

	os.WriteFile(path, []byte("12345"), 0644)
	if got := FileSizeCheck("spool", path, 10).Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("below limit: Status = %v", got.Status)
	}

	os.WriteFile(path, []byte("1234567890"), 0644)
	got := FileSizeCheck("spool", path, 10).Check(context.Background())
	if got.Status != StatusDegraded {
		t.Errorf("at limit: Status = %v", got.Status)
	}
	if got.Details["size"] != int64(10) {
		t.Errorf("size detail = %v", got.Details["size"])
	}
}

func TestErrorCheck(t *testing.T) {
	ok := ErrorCheck("ok", func(ctx context.Context) error { return nil }).Check(context.Background())
	if ok.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", ok.Status)
	}

	bad := ErrorCheck("bad", func(ctx context.Context) error { return errors.New("locked") }).Check(context.Background())
	if bad.Status != StatusUnhealthy || bad.Message != "locked" {
		t.Errorf("result = %+v", bad)
	}
}
