// Package watch monitors a configuration file and reruns a callback when
// its contents change. File system notifications drive the fast path and a
// polling fallback catches events the notifier misses.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	defaultDebounce     = 500 * time.Millisecond
	defaultPollInterval = 2 * time.Second
	defaultMinInterval  = time.Second

	// settleTickInterval is how often pending changes are checked against
	// the debounce window.
	settleTickInterval = 100 * time.Millisecond
)

// Config configures a Watcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// OnChange runs after a change has settled. Errors are logged and
	// counted but do not stop the watcher.
	OnChange func(path string) error

	// Debounce is how long the file must stay quiet before OnChange
	// fires. Editors often emit bursts of events per save. Default: 500ms.
	Debounce time.Duration

	// PollInterval is the fallback mtime check interval. Default: 2s.
	PollInterval time.Duration

	// MinInterval is the minimum spacing between OnChange runs.
	// Default: 1s.
	MinInterval time.Duration

	// Logger for watcher activity. Defaults to slog.Default().
	Logger *slog.Logger
}

// Stats tracks watcher activity.
type Stats struct {
	Changes    int
	Failures   int
	LastChange time.Time
}

// Watcher monitors a single file for changes.
type Watcher struct {
	path     string
	onChange func(path string) error
	debounce time.Duration
	poll     time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	mu        sync.Mutex
	running   bool
	pending   bool
	lastEvent time.Time
	lastMod   time.Time
	stats     Stats

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a watcher for the file at config.Path.
func New(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if config.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}

	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.MinInterval <= 0 {
		config.MinInterval = defaultMinInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		onChange: config.OnChange,
		debounce: config.Debounce,
		poll:     config.PollInterval,
		logger:   logger,
		watcher:  fsWatcher,
		limiter:  rate.NewLimiter(rate.Every(config.MinInterval), 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking; the event loop runs in a
// goroutine until Stop is called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("cannot watch %s: %w", w.path, err)
	}
	w.mu.Lock()
	w.lastMod = info.ModTime()
	w.mu.Unlock()

	// Watch the parent directory rather than the file itself: editors
	// that save via rename-and-replace would otherwise detach the watch.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("Watching for changes", "path", w.path, "pollInterval", w.poll)

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Failed to close file watcher", "error", err)
	}
}

// IsWatching returns whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	settleTicker := time.NewTicker(settleTickInterval)
	defer settleTicker.Stop()

	pollTicker := time.NewTicker(w.poll)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", "error", err)

		case <-settleTicker.C:
			w.fireIfSettled()

		case <-pollTicker.C:
			w.checkModTime()
		}
	}
}

// handleEvent marks the file as pending when the event concerns it.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// checkModTime is the polling fallback: a changed mtime marks the file
// pending even when no notification arrived.
func (w *Watcher) checkModTime() {
	info, err := os.Stat(w.path)
	if err != nil {
		// File temporarily missing mid-save; notifications cover the
		// re-create.
		return
	}

	w.mu.Lock()
	if !info.ModTime().Equal(w.lastMod) {
		w.lastMod = info.ModTime()
		w.pending = true
		w.lastEvent = time.Now()
	}
	w.mu.Unlock()
}

// fireIfSettled runs the callback once a pending change has been quiet for
// the debounce window and the rate limiter permits another run.
func (w *Watcher) fireIfSettled() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	if !w.limiter.Allow() {
		// Stay pending; a later tick retries once the limiter refills.
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	if info, err := os.Stat(w.path); err == nil {
		w.mu.Lock()
		w.lastMod = info.ModTime()
		w.mu.Unlock()
	}

	start := time.Now()
	err := w.onChange(w.path)

	w.mu.Lock()
	w.stats.LastChange = time.Now()
	if err != nil {
		w.stats.Failures++
	} else {
		w.stats.Changes++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Change handler failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("Change handled", "path", w.path, "took", time.Since(start).Round(time.Millisecond))
	}
}
