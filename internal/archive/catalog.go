package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
)

// Entry describes one archived file
type Entry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	StoredSize  int64     `json:"stored_size"`
	Compressed  bool      `json:"compressed"`
	ArchivedAt  time.Time `json:"archived_at"`
	DurationMS  float64   `json:"duration_ms"`
}

// Stats summarizes the catalog
type Stats struct {
	Count        int64
	TotalBytes   int64
	StoredBytes  int64
	LastArchived time.Time
}

// Catalog defines the interface for archive bookkeeping
type Catalog interface {
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]*Entry, error)
	Stats(ctx context.Context) (Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteCatalog implements Catalog using SQLite
type SQLiteCatalog struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteCatalogConfig holds configuration for the SQLite catalog
type SQLiteCatalogConfig struct {
	Path string
}

// DefaultCatalogConfig returns default configuration
func DefaultCatalogConfig() SQLiteCatalogConfig {
	return SQLiteCatalogConfig{
		Path: "./data/catalog.db",
	}
}

// NewSQLiteCatalog opens or creates the catalog database
func NewSQLiteCatalog(cfg SQLiteCatalogConfig) (*SQLiteCatalog, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "open",
			fmt.Errorf("failed to create directory: %w", err))
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "open",
			fmt.Errorf("failed to open database: %w", err))
	}

	catalog := &SQLiteCatalog{db: db}

	if err := catalog.initSchema(); err != nil {
		db.Close()
		return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "open",
			fmt.Errorf("failed to initialize schema: %w", err))
	}

	return catalog, nil
}

func (c *SQLiteCatalog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archived_files (
		id TEXT PRIMARY KEY,
		archived_at DATETIME NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		size INTEGER NOT NULL,
		stored_size INTEGER NOT NULL DEFAULT 0,
		compressed INTEGER NOT NULL DEFAULT 0,
		duration_ms REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_archived_files_archived_at ON archived_files(archived_at DESC);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Record stores a new entry
func (c *SQLiteCatalog) Record(ctx context.Context, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO archived_files (id, archived_at, source, destination, size, stored_size, compressed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ArchivedAt.UTC(), entry.Source, entry.Destination,
		entry.Size, entry.StoredSize, entry.Compressed, entry.DurationMS)
	if err != nil {
		return idoerrors.StorageError(idoerrors.ModuleArchive, "record", err)
	}
	return nil
}

// List returns the most recent entries first. A limit <= 0 returns all.
func (c *SQLiteCatalog) List(ctx context.Context, limit int) ([]*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := `SELECT id, archived_at, source, destination, size, stored_size, compressed, duration_ms
		FROM archived_files ORDER BY archived_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "list", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.ArchivedAt, &entry.Source, &entry.Destination,
			&entry.Size, &entry.StoredSize, &entry.Compressed, &entry.DurationMS); err != nil {
			return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "list", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, idoerrors.StorageError(idoerrors.ModuleArchive, "list", err)
	}

	return entries, nil
}

// Stats returns count, total size and the time of the latest entry
func (c *SQLiteCatalog) Stats(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var stats Stats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(stored_size), 0) FROM archived_files`).
		Scan(&stats.Count, &stats.TotalBytes, &stats.StoredBytes)
	if err != nil {
		return Stats{}, idoerrors.StorageError(idoerrors.ModuleArchive, "stats", err)
	}

	if stats.Count > 0 {
		err = c.db.QueryRowContext(ctx,
			`SELECT archived_at FROM archived_files ORDER BY archived_at DESC LIMIT 1`).
			Scan(&stats.LastArchived)
		if err != nil {
			return Stats{}, idoerrors.StorageError(idoerrors.ModuleArchive, "stats", err)
		}
	}

	return stats, nil
}

// Prune deletes entries older than the given age
func (c *SQLiteCatalog) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := c.db.ExecContext(ctx, `DELETE FROM archived_files WHERE archived_at < ?`, cutoff)
	if err != nil {
		return 0, idoerrors.StorageError(idoerrors.ModuleArchive, "prune", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Close closes the database
func (c *SQLiteCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// MemoryCatalog is an in-memory Catalog for tests and dry runs
type MemoryCatalog struct {
	entries []*Entry
	mu      sync.RWMutex
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

// Record stores a copy of entry
func (c *MemoryCatalog) Record(ctx context.Context, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := *entry
	c.entries = append(c.entries, &e)
	return nil
}

// List returns the most recent entries first
func (c *MemoryCatalog) List(ctx context.Context, limit int) ([]*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Entry, len(c.entries))
	copy(result, c.entries)
	// Newest first; insertion order breaks ties.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ArchivedAt.After(result[j].ArchivedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Stats returns count, total size and the time of the latest entry
func (c *MemoryCatalog) Stats(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var stats Stats
	for _, e := range c.entries {
		stats.Count++
		stats.TotalBytes += e.Size
		stats.StoredBytes += e.StoredSize
		if e.ArchivedAt.After(stats.LastArchived) {
			stats.LastArchived = e.ArchivedAt
		}
	}
	return stats, nil
}

// Prune deletes entries older than the given age
func (c *MemoryCatalog) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := c.entries[:0]
	var deleted int64
	for _, e := range c.entries {
		if e.ArchivedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	return deleted, nil
}

// Close is a no-op
func (c *MemoryCatalog) Close() error {
	return nil
}

// IsStorageError reports whether err is a catalog storage failure
func IsStorageError(err error) bool {
	return idoerr.HasCode(err, idoerr.CodeStorageError)
}
