package common

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig reloads path whenever it changes and hands each valid result to
// onChange. Bursts of events are coalesced over debounce. A reload that fails
// validation is logged and skipped, so the last good config stays in effect.
// The watch stops when ctx is done.
func WatchConfig(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return err
	}
	// editors replace files by rename, so watch the directory
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		logger.Error("failed to watch config directory", "dir", filepath.Dir(abs), "error", err)
		return err
	}

	reload := func() {
		cfg, err := LoadConfig(abs)
		if err != nil {
			logger.Warn("config reload rejected", "file", abs, "error", err)
			return
		}
		onChange(cfg)
	}

	go func() {
		defer func() { _ = w.Close() }()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		schedule := func() {
			mu.Lock()
			defer mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs {
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher error", "error", err)
			}
		}
	}()

	logger.Debug("watching config file", "file", abs)
	return nil
}
