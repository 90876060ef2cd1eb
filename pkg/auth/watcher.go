package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of write events (editors and atomic
// renames produce several per save) into one reload.
const watchDebounce = 100 * time.Millisecond

// Watcher reloads the credential store when its backing file changes on
// disk and invalidates the manager's cached Copilot token, so a login
// performed by another process takes effect without a restart.
type Watcher struct {
	store   *Store
	manager *Manager
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the store's directory. Watching the
// directory rather than the file survives the rename the store's atomic
// save performs.
func NewWatcher(store *Store, manager *Manager) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	return &Watcher{store: store, manager: manager, watcher: fw}, nil
}

// Watch processes file events until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	slog.Info("watching credential file",
		"path", w.store.Path(),
	)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Warn("credential watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		slog.Warn("failed to reload credential file",
			"path", w.store.Path(),
			"error", err,
		)
		return
	}

	w.manager.Invalidate()
	slog.Info("credential file reloaded",
		"path", w.store.Path(),
	)
}
