package flaggallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce collapses the burst of events an editor emits on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// ItemsWatcher watches an items file and delivers freshly parsed item lists
// on Updates. Files that fail to parse are logged and skipped; the previous
// list stays in effect.
type ItemsWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *zap.Logger
	updates  chan []Item
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	reloads  int
	failures int
}

// NewItemsWatcher creates a watcher for path. The parent directory is
// watched so that atomic saves (write to temp, rename over) are seen.
func NewItemsWatcher(path string, debounce time.Duration, log *zap.Logger) (*ItemsWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch items: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch items: %w", err)
	}
	return &ItemsWatcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		log:      log.With(zap.String("file", abs)),
		updates:  make(chan []Item, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Updates delivers each successfully parsed reload. Only the newest pending
// list is kept when the receiver lags.
func (w *ItemsWatcher) Updates() <-chan []Item { return w.updates }

// Start begins watching. It is non-blocking; the loop exits when ctx is
// cancelled or Stop is called.
func (w *ItemsWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch items: %w", err)
	}
	w.log.Info("watching items")
	go w.run(ctx)
	return nil
}

// Stop ends the loop, waits for it to exit and closes the underlying
// watcher. Stop is idempotent.
func (w *ItemsWatcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("close items watcher", zap.Error(err))
	}
}

// Counts returns the number of successful reloads and rejected files.
func (w *ItemsWatcher) Counts() (reloads, failures int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.failures
}

func (w *ItemsWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("items event", zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("items watcher", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *ItemsWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *ItemsWatcher) reload() {
	items, err := LoadItems(w.path)
	if err != nil {
		// A rename-over leaves a short window where the file is missing.
		if errors.Is(err, os.ErrNotExist) {
			w.log.Debug("items file vanished, waiting")
			return
		}
		w.mu.Lock()
		w.failures++
		w.mu.Unlock()
		w.log.Warn("items reload rejected", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.log.Info("items reloaded", zap.Int("count", len(items)))

	// Drop a stale pending list in favour of this one.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- items
}
