package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single editor save produces.
const reloadDelay = 100 * time.Millisecond

// Watch monitors path for changes and calls onChange with the newly loaded
// Config after each save. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// rename-based saves keep being observed after the inode changes.
// A reload that fails to parse or validate is logged and skipped; onChange
// is only ever called with a valid Config.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", abs)

	pending := time.NewTimer(reloadDelay)
	pending.Stop()
	defer pending.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending.Reset(reloadDelay)

		case <-pending.C:
			cfg, err := Load(abs)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", abs, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", abs)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
