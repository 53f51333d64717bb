// Package watch re-runs extension generation whenever a description file
// changes on disk. Rapid editor saves are debounced so each burst of writes
// produces a single regeneration.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// RunFunc receives the freshly read description after a change has settled.
// It is invoked on the watcher goroutine, so runs never overlap.
type RunFunc func(ctx context.Context, description string)

// Stats tracks watcher activity for the watch command summary.
type Stats struct {
	Events        int
	Runs          int
	Errors        int
	LastEventTime time.Time
}

// Watcher monitors a single description file and triggers regeneration once
// a change settles past the debounce window.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	base        string
	regen       RunFunc
	logger      *zap.Logger
	debounceDur time.Duration
	pending     bool
	pendingAt   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a Watcher for the description file at path. The regen callback
// runs once per settled change.
func New(path string, regen RunFunc, logger *zap.Logger) (*Watcher, error) {
	if regen == nil {
		return nil, errors.New("regenerate callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:     fsw,
		path:        abs,
		dir:         filepath.Dir(abs),
		base:        filepath.Base(abs),
		regen:       regen,
		logger:      logger,
		debounceDur: 500 * time.Millisecond, // settle window for rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching the description file. It is non-blocking; the event
// loop runs in a goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.logger.Warn("failed to create watch directory",
			zap.String("dir", w.dir),
			zap.Error(err))
	}

	// Watch the parent directory rather than the file itself: editors that
	// replace the file on save would detach a file-level watch.
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching description file", zap.String("path", w.path))

	go w.run(ctx)

	return nil
}

// Stop stops the event loop and closes the underlying filesystem watcher.
// It must be called even when the context given to Start was cancelled, and
// is safe to call when the watcher was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("failed to close watcher", zap.Error(err))
	}
	w.logger.Debug("watcher stopped")
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// TriggerRun reads the description file and regenerates immediately,
// bypassing the debounce window. A missing or empty file is skipped without
// error so a watch session can begin before the file has content.
func (w *Watcher) TriggerRun(ctx context.Context) error {
	return w.regenerate(ctx)
}

// run is the main event loop for the watcher.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch context cancelled")
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
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			if !w.takeSettled() {
				continue
			}
			if err := w.regenerate(ctx); err != nil {
				w.logger.Error("regeneration failed", zap.Error(err))
				w.mu.Lock()
				w.stats.Errors++
				w.mu.Unlock()
			}
		}
	}
}

// handleEvent records a debounced change for the watched file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.base {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("description file event",
		zap.String("op", event.Op.String()),
		zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

// takeSettled consumes the pending change if it has been quiet for the full
// debounce window.
func (w *Watcher) takeSettled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.pendingAt) < w.debounceDur {
		return false
	}
	w.pending = false
	return true
}

// regenerate re-reads the description file and invokes the callback. Missing
// and empty files are skipped; only real read failures return an error.
func (w *Watcher) regenerate(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug("description file missing, waiting for next change",
				zap.String("path", w.path))
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", w.path, err)
	}

	description := strings.TrimSpace(string(data))
	if description == "" {
		w.logger.Warn("description file is empty, skipping run",
			zap.String("path", w.path))
		return nil
	}

	w.mu.Lock()
	w.stats.Runs++
	w.mu.Unlock()

	w.logger.Info("description changed, regenerating",
		zap.String("path", w.path))
	w.regen(ctx, description)

	return nil
}
