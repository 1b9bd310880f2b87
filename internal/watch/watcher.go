package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/metrics"
)

// Watcher monitors the trackio database file for writes and publishes
// debounced RunUpdate events to a Hub.
type Watcher struct {
	dbPath       string
	hub          *Hub
	recorder     metrics.Recorder
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	changeChan   chan struct{}
	debounceTime time.Duration
	stopped      bool
}

// NewWatcher creates a watcher for the database at dbPath, publishing to hub.
func NewWatcher(dbPath string, hub *Hub, recorder metrics.Recorder) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Watcher{
		dbPath:       absPath,
		hub:          hub,
		recorder:     recorder,
		watcher:      fsw,
		stopChan:     make(chan struct{}),
		changeChan:   make(chan struct{}, 1),
		debounceTime: time.Second,
	}, nil
}

// Start begins monitoring. Watching the directory is more reliable than
// watching the file directly: SQLite swaps WAL and journal files around the
// main database file.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.dbPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch database directory %s: %w", dir, err)
	}

	slog.Info("watching trackio database", logfields.Path(w.dbPath))

	go w.watchLoop(ctx)
	go w.publishLoop(ctx)
	return nil
}

// Stop stops the watcher and releases the fsnotify handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	base := filepath.Base(w.dbPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, chanOpen := <-w.watcher.Events:
			if !chanOpen {
				return
			}
			if !w.relevant(base, event) {
				continue
			}
			select {
			case w.changeChan <- struct{}{}:
			default:
			}
		case err, chanOpen := <-w.watcher.Errors:
			if !chanOpen {
				return
			}
			slog.Warn("database watcher error", logfields.Error(err))
		}
	}
}

// relevant reports whether a filesystem event concerns the database or one
// of its SQLite side files.
func (w *Watcher) relevant(base string, event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == base || strings.HasPrefix(name, base+"-")
}

// publishLoop debounces change signals into one RunUpdate per quiet window.
func (w *Watcher) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.changeChan:
			// Absorb further changes until the database settles.
			timer := time.NewTimer(w.debounceTime)
		drain:
			for {
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-w.stopChan:
					timer.Stop()
					return
				case <-w.changeChan:
					if !timer.Stop() {
						<-timer.C
					}
					timer.Reset(w.debounceTime)
				case <-timer.C:
					break drain
				}
			}

			ev := NewRunUpdate(w.dbPath)
			w.hub.Publish(ev)
			w.recorder.IncRunUpdate()
			slog.Debug("run update published", logfields.Path(w.dbPath), "event_id", ev.ID)
		}
	}
}
