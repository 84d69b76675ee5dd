package sources

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the catalog file whenever it changes and hands the
// result to fn. It blocks until the context is cancelled. Reload
// failures are logged and skipped, keeping the previous catalog with
// the caller.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(*Catalog)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors that write-and-rename
	// would otherwise detach the watch on the first save.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				catalog, err := Load(path)
				if err != nil {
					logger.Error("failed to reload catalog", "path", path, "error", err)
					return
				}
				logger.Debug("catalog reloaded", "path", path, "sources", len(catalog.Sources))
				fn(catalog)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
