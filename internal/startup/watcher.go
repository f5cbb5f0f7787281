package startup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchEntry calls onChange after the file at path is created, written,
// removed or renamed. Bursts of events within debounce collapse into one call.
// The parent directory is watched because editors and our own atomic writes
// replace the file rather than modify it in place.
func watchEntry(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, onChange func()) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create auto-start directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Debug("Watching auto-start entry", zap.String("path", path))
	go watchLoop(ctx, watcher, filepath.Clean(path), debounce, logger, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration, logger *zap.Logger, onChange func()) {
	defer watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Debug("Auto-start entry changed", zap.String("path", path))
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Auto-start watcher error", zap.Error(err))
		}
	}
}
