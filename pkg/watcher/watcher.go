package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/santa-ring/pkg/logging"
)

// ChangeEvent represents a batch of roster file changes
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// RosterWatcher watches a roster file for changes. It watches the containing
// directory rather than the file itself: most editors replace the file via
// rename, which would silently detach a watch on the file's inode.
type RosterWatcher struct {
	watcher *fsnotify.Watcher
	path    string // Absolute path of the roster file
	events  chan ChangeEvent
}

// NewRosterWatcher creates a watcher for the given roster file
func NewRosterWatcher(path string) (*RosterWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roster path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &RosterWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching for roster changes
func (rw *RosterWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(rw.path)
	if err := rw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching roster", "path", rw.path)

	go rw.processEvents(ctx)

	return nil
}

// processEvents filters raw fsnotify events down to changes of the roster
// file and forwards them as ChangeEvents
func (rw *RosterWatcher) processEvents(ctx context.Context) {
	defer rw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			close(rw.events)
			return

		case event, ok := <-rw.watcher.Events:
			if !ok {
				close(rw.events)
				return
			}

			if !rw.isRosterEvent(event) {
				continue
			}

			logging.Debug("roster change detected", "op", event.Op.String())

			select {
			case rw.events <- ChangeEvent{Paths: []string{rw.path}, Timestamp: time.Now()}:
			default:
				logging.Warn("watcher event buffer full, dropping event")
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				close(rw.events)
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}

// isRosterEvent reports whether a raw event concerns the roster file with an
// operation that can change its contents
func (rw *RosterWatcher) isRosterEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == rw.path
}

// Events returns the channel of detected changes
func (rw *RosterWatcher) Events() <-chan ChangeEvent {
	return rw.events
}
