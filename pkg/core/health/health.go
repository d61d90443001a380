// ============================================================================
// idoutils - IDO data-out utilities
// ============================================================================
//
// Package:     health
// Description: Readiness checks for spool, archive and catalog locations
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Status represents the outcome of a check
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string
	Status    Status
	Message   string
	Duration  time.Duration
	Timestamp time.Time
	Details   map[string]interface{}
}

// Checker is an interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &namedCheck{name: name, fn: fn}
}

func (c *namedCheck) Name() string {
	return c.name
}

func (c *namedCheck) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// Registry runs a set of checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	name     string
}

// NewRegistry creates an empty registry
func NewRegistry(name string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		name:     name,
	}
}

// Register adds or replaces a checker
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// Check runs all checks concurrently. Results are sorted by name; the
// overall status is the worst single status.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &Report{
		Name:      r.name,
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, 0, len(r.checkers)),
	}

	var wg sync.WaitGroup
	results := make(chan CheckResult, len(r.checkers))

	for _, checker := range r.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			results <- result
		}(checker)
	}
	wg.Wait()
	close(results)

	overall := StatusHealthy
	for result := range results {
		report.Checks = append(report.Checks, result)
		switch result.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall != StatusUnhealthy {
				overall = StatusDegraded
			}
		}
	}
	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = overall
	return report
}

// Report is the combined result of a registry run
type Report struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// String returns a one-line summary
func (r *Report) String() string {
	return fmt.Sprintf("%s: %s (%d checks)", r.Name, r.Status, len(r.Checks))
}

// WritableDirCheck reports unhealthy unless a file can be created in dir.
// A missing directory is degraded, since it is created on first use.
func WritableDirCheck(name, dir string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Details: map[string]interface{}{"dir": dir},
		}

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			result.Status = StatusDegraded
			result.Message = "does not exist yet"
			return result
		case err != nil:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		case !info.IsDir():
			result.Status = StatusUnhealthy
			result.Message = "not a directory"
			return result
		}

		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = "not writable: " + err.Error()
			return result
		}
		f.Close()
		os.Remove(f.Name())

		result.Status = StatusHealthy
		result.Message = "writable"
		return result
	})
}

// FileSizeCheck reports degraded when the file at path has reached limit,
// which for a spool file means a rotation is overdue. A missing file is
// healthy.
func FileSizeCheck(name, path string, limit int64) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Details: map[string]interface{}{"path": path, "limit": limit},
		}

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			result.Message = "no file"
			return result
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}

		result.Details["size"] = info.Size()
		if info.Size() >= limit {
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("size %d reached limit %d", info.Size(), limit)
			return result
		}
		result.Message = fmt.Sprintf("%d of %d bytes", info.Size(), limit)
		return result
	})
}

// ErrorCheck reports unhealthy when fn returns an error
func ErrorCheck(name string, fn func(ctx context.Context) error) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := fn(ctx); err != nil {
			return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error()}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "ok"}
	})
}
