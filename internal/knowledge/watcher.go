package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"aria/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the knowledge base file when it changes on disk. Rapid
// editor saves are debounced; a file that fails to parse keeps the previous
// table in place.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	onReload    func(*Base)
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	Reloads       int
	ReloadErrors  int
	LastEventTime time.Time
}

// NewWatcher creates a watcher for the knowledge base at path. onReload is
// called with the freshly parsed table after every successful reload.
func NewWatcher(path string, onReload func(*Base)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        path,
		onReload:    onReload,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// Watches the parent directory so atomic editor saves (write to temp, rename
// over) are still observed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		logging.Get(logging.CategoryDecision).Warn("knowledge watcher: cannot watch %s: %v", dir, err)
	} else {
		logging.Decision("knowledge watcher: watching %s", w.path)
	}

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
		logging.Get(logging.CategoryDecision).Error("knowledge watcher: close: %v", err)
	}
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a copy of the watcher statistics.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

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
			logging.Get(logging.CategoryDecision).Error("knowledge watcher: %v", err)

		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// The whole directory is watched; only the knowledge file matters.
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	var toProcess []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toProcess = append(toProcess, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for range toProcess {
		w.reload()
	}
}

func (w *Watcher) reload() {
	base, err := Load(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.DecisionDebug("knowledge watcher: file removed, keeping current table")
			return
		}
		logging.Get(logging.CategoryDecision).Warn("knowledge watcher: reload failed, keeping current table: %v", err)
		w.mu.Lock()
		w.stats.ReloadErrors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()

	logging.Decision("knowledge watcher: reloaded %s (%d intents)", w.path, len(base.order))
	if w.onReload != nil {
		w.onReload(base)
	}
}
