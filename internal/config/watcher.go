package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"toolmux/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of fsnotify events most editors emit
// for a single save into one reload.
const reloadDebounce = 500 * time.Millisecond

// Watcher watches the configuration file and invokes a callback with the
// freshly loaded configuration whenever it changes on disk.
type Watcher struct {
	path     string
	onChange func(Config)
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given config file. The callback runs
// on the watcher goroutine; it must not block for long.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	// Watch the directory rather than the file: editors that replace the
	// file on save would otherwise detach the watch.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsWatcher,
	}, nil
}

// Start runs the watch loop until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer w.watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("ConfigWatcher", "Config file event: %s", event.Op)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("ConfigWatcher", "Watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		logging.Error("ConfigWatcher", err, "Ignoring config change, reload failed")
		return
	}
	if err := Validate(&cfg); err != nil {
		logging.Error("ConfigWatcher", err, "Ignoring config change, validation failed")
		return
	}
	logging.Info("ConfigWatcher", "Configuration reloaded from %s", w.path)
	w.onChange(cfg)
}
