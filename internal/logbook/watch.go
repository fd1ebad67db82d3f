package logbook

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a logbook file, including ones made by another
// process such as the API server.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Watch prepares a watcher for the logbook's file. The directory is watched so
// the file may be created after the watcher starts.
func (l *Logbook) Watch() (*Watcher, error) {
	if l == nil {
		return nil, fmt.Errorf("logbook: nil logbook")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("logbook: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(l.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("logbook: watch %s: %w", filepath.Dir(l.path), err)
	}
	return &Watcher{
		path:    filepath.Clean(l.path),
		watcher: fw,
		changes: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Changes delivers one value per burst of writes. Rapid writes coalesce.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins forwarding events. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.run(ctx)
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()
	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
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
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
