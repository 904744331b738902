package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last change
// before reloading. Editors often write a file in several steps.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithTransform installs a hook applied to every reloaded config before it
// is published, e.g. re-applying environment overrides.
func WithTransform(fn func(*Config)) WatcherOption {
	return func(w *Watcher) {
		w.transform = fn
	}
}

// Watcher reloads the config file when it changes and publishes each valid
// new config to its subscribers. Invalid files are logged and skipped.
type Watcher struct {
	path      string
	log       *logger.Logger
	debounce  time.Duration
	transform func(*Config)

	mu   sync.Mutex
	subs []chan *Config
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		log:      log,
		debounce: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe returns a channel receiving reloaded configs. Slow subscribers
// miss intermediate versions; the newest one always wins.
func (w *Watcher) Subscribe() <-chan *Config {
	ch := make(chan *Config, 1)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Run watches the file's directory until ctx is cancelled. Watching the
// directory rather than the file survives editors that replace the file
// on save.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fs watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	file := filepath.Base(w.path)
	w.log.Info("config watcher started (%s)", w.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, w.reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("config watcher stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.log.Debug("config change detected (%s)", ev.Op)
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload skipped: %v", err)
		return
	}
	if w.transform != nil {
		w.transform(cfg)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		// Replace a stale unread config with the new one.
		select {
		case <-ch:
		default:
		}
		ch <- cfg
	}
	w.log.Info("config reloaded from %s", w.path)
}
