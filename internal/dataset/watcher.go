package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Debounce is the quiet period after the last file event before reloading.
	Debounce time.Duration
	// PollInterval is a fallback check for missed events. Zero disables it.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Watcher reloads the data directory into a Store whenever its JSON files
// change. A burst of writes results in a single reload.
type Watcher struct {
	dir    string
	loader *Loader
	store  *Store
	cfg    WatcherConfig

	debounced func(func())
	mu        sync.Mutex
	lastMod   time.Time
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, loader *Loader, store *Store, cfg WatcherConfig) *Watcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	return &Watcher{
		dir:       dir,
		loader:    loader,
		store:     store,
		cfg:       cfg,
		debounced: debounce.New(cfg.Debounce),
	}
}

// Reload loads the directory and swaps the result into the store.
func (w *Watcher) Reload(ctx context.Context) error {
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload datasets: %w", err)
	}
	w.store.Swap(snap)

	w.mu.Lock()
	w.lastMod = latestModTime(w.dir)
	w.mu.Unlock()

	w.cfg.Logger.Info("datasets reloaded", "dir", w.dir, "version", snap.Version)
	return nil
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			w.cfg.Logger.Warn("close file watcher", "error", closeErr)
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}

	var poll <-chan time.Time
	if w.cfg.PollInterval > 0 {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(event) {
				w.schedule(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("file watcher error", "error", err)
		case <-poll:
			w.mu.Lock()
			changed := latestModTime(w.dir).After(w.lastMod)
			w.mu.Unlock()
			if changed {
				w.schedule(ctx)
			}
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.debounced(func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.Reload(ctx); err != nil {
			w.cfg.Logger.Error("dataset reload failed", "error", err)
		}
	})
}

func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".json") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func latestModTime(dir string) time.Time {
	var latest time.Time
	entries, err := os.ReadDir(dir)
	if err != nil {
		return latest
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}
