package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDelay collects the burst of events an editor produces when saving.
const ReloadDelay = 200 * time.Millisecond

// Watch calls onChange with the new configuration every time the file at
// cfile changes. Files that fail to load are logged and skipped. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, cfile string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	target := filepath.Clean(cfile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				slog.Debug("Config file changed", "file", ev.Name, "op", ev.Op.String())
				timer.Reset(ReloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Config watcher error", "error", err)
		case <-timer.C:
			conf, err := ReadConfig(cfile)
			if err != nil {
				slog.Error("Ignoring changed config file", "error", err)
				continue
			}
			slog.Info("Config file reloaded", "file", cfile)
			onChange(conf)
		}
	}
}
