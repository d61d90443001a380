package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	idolog "github.com/msto63/idoutils/foundation/core/log"
)

// DefaultSettle is how long a file must stay unchanged before it is archived
const DefaultSettle = 500 * time.Millisecond

// WatcherConfig holds inbox watcher settings
type WatcherConfig struct {
	InboxDir string
	Pattern  string        // glob matched against the file name
	Settle   time.Duration // quiet period after the last create/write event
}

// Watcher archives files that appear in an inbox directory
type Watcher struct {
	inbox    string
	pattern  string
	settle   time.Duration
	archiver *Archiver
	logger   *idolog.Logger

	mu       sync.Mutex
	pending  map[string]time.Time
	archived int
	failed   int
}

// NewWatcher validates the configuration and creates the inbox if needed
func NewWatcher(cfg WatcherConfig, archiver *Archiver, logger *idolog.Logger) (*Watcher, error) {
	if cfg.InboxDir == "" {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "watch", "inbox_dir", "inbox directory is empty")
	}
	if archiver == nil {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "watch", "archiver", "archiver is nil")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*"
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, idoerrors.InvalidArgument(idoerrors.ModuleArchive, "watch", "pattern", err.Error())
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if logger == nil {
		logger = idolog.NewNop()
	}
	if err := os.MkdirAll(cfg.InboxDir, 0755); err != nil {
		return nil, idoerrors.IOFailure(idoerrors.ModuleArchive, "watch", cfg.InboxDir, err)
	}

	return &Watcher{
		inbox:    cfg.InboxDir,
		pattern:  cfg.Pattern,
		settle:   cfg.Settle,
		archiver: archiver,
		logger:   logger.WithField("component", "watcher"),
		pending:  make(map[string]time.Time),
	}, nil
}

// Counts returns the number of archived and failed files so far
func (w *Watcher) Counts() (archived, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.archived, w.failed
}

// Run archives files already in the inbox, then watches for new ones until
// ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return idoerrors.IOFailure(idoerrors.ModuleArchive, "watch", w.inbox, err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.inbox); err != nil {
		return idoerrors.IOFailure(idoerrors.ModuleArchive, "watch", w.inbox, err)
	}

	w.logger.Info("watching inbox", idolog.Fields{"inbox": w.inbox, "pattern": w.pattern})
	w.Sweep(ctx)

	ticker := time.NewTicker(w.settle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.touch(event.Name)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnWithErr("watch error", err)

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.archive(ctx, path)
			}
		}
	}
}

// Sweep archives every matching file currently in the inbox
func (w *Watcher) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		w.logger.WarnWithErr("inbox sweep failed", err)
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(w.inbox, e.Name())
		if w.matches(path) {
			w.archive(ctx, path)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, _ := filepath.Match(w.pattern, filepath.Base(path))
	return ok
}

func (w *Watcher) touch(path string) {
	if !w.matches(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// due removes and returns the pending paths that have been quiet for the
// settle period
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) archive(ctx context.Context, path string) {
	if !IsArchivable(path) {
		return
	}

	_, err := w.archiver.Archive(ctx, path)

	w.mu.Lock()
	if err != nil {
		w.failed++
	} else {
		w.archived++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.LogError(err)
	}
}
