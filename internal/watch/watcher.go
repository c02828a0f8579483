// Package watch follows the canonical store file for external changes. It
// watches the store's parent directory because editors and the store's own
// atomic save replace the file by rename, which would orphan a watch on the
// file itself.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"linenote/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one canonical store file and invokes a callback after
// changes settle past the debounce window. Notifications raised while the
// watcher is suppressed are dropped, which is how the syncer keeps its own
// write-back from re-triggering a sync.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	storePath   string
	dir         string
	onChange    func()
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	suppressed  int

	stats Stats
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	Events        int
	Suppressed    int
	Dispatched    int
	Errors        int
	LastEventTime time.Time
	LastEventOp   string
}

// New creates a Watcher for the store file at storePath. onChange runs on
// the watcher goroutine; keep it short or hand off.
func New(storePath string, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		storePath:   filepath.Clean(storePath),
		dir:         filepath.Dir(filepath.Clean(storePath)),
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("watching %s for changes to %s", w.dir, filepath.Base(w.storePath))

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
		logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", err)
	}
	logging.Watch("stopped")
}

// Suppress pauses change dispatch. Calls nest; each Suppress needs a
// matching Resume. Events seen while suppressed are discarded entirely.
func (w *Watcher) Suppress() {
	w.mu.Lock()
	w.suppressed++
	w.mu.Unlock()
	logging.WatchDebug("suppressed")
}

// Resume undoes one Suppress. Pending debounced events from before the
// suppression are also cleared, so the store's own save never bounces back.
func (w *Watcher) Resume() {
	w.mu.Lock()
	if w.suppressed > 0 {
		w.suppressed--
	}
	if w.suppressed == 0 {
		w.debounceMap = make(map[string]time.Time)
	}
	w.mu.Unlock()
	logging.WatchDebug("resumed")
}

// IsWatching returns true while the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a copy of the activity counters.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("context cancelled")
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
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.dispatchSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.storePath {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return // Ignore chmod
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventOp = event.Op.String()

	if w.suppressed > 0 {
		w.stats.Suppressed++
		return
	}
	w.debounceMap[event.Name] = time.Now()
}

func (w *Watcher) dispatchSettled() {
	w.mu.Lock()
	now := time.Now()
	fire := false
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			delete(w.debounceMap, path)
			fire = true
		}
	}
	if fire {
		w.stats.Dispatched++
	}
	w.mu.Unlock()

	if fire && w.onChange != nil {
		logging.WatchDebug("store change settled, dispatching")
		w.onChange()
	}
}
