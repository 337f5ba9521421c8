package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig holds configuration for the config file watcher.
type WatcherConfig struct {
	// Path is the config file. Its directory is watched so editors that
	// replace the file by rename are seen.
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher reloads the configuration when the file changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   func(context.Context) error
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching cfg.Path. reload runs once per burst of
// changes.
func NewWatcher(cfg WatcherConfig, reload func(context.Context) error) (*Watcher, error) {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	path := filepath.Clean(cfg.Path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		reload:   reload,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Run handles file events until ctx is cancelled. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("config watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.apply(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) apply(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("config reload panicked", "panic", r)
		}
	}()
	if err := w.reload(ctx); err != nil {
		w.logger.Warn("config reload failed, keeping current config", "error", err)
	}
}
