package registry

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/changedesk/internal/models"
)

// ReloadFunc receives the freshly parsed registry after an edit.
type ReloadFunc func(ctx context.Context, vendors []models.VendorRecord) error

const debounce = 200 * time.Millisecond

// Watch watches the vendors file and calls onReload with its parsed
// content after each burst of edits, until ctx is cancelled. The parent
// directory is watched so that editors replacing the file by rename are
// picked up. Parse errors are logged and the previous registry is kept.
func Watch(ctx context.Context, path string, logger *slog.Logger, onReload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("registry watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("registry watcher: stopped")
			return nil

		case <-fire:
			vendors, err := LoadFile(abs)
			if err != nil {
				logger.Warn("registry watcher: reload skipped", slog.String("error", err.Error()))
				continue
			}
			if err := onReload(ctx, vendors); err != nil {
				logger.Error("registry watcher: apply failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("registry watcher: reloaded", slog.Int("vendors", len(vendors)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("registry watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
