// Package watcher triggers configuration reloads when a keepalived
// configuration file changes on disk.
//
// Events from fsnotify are filtered, grouped by a debouncer so that an editor
// writing a file in several steps produces one reload, and handed to the
// registered handlers.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/bfdconf/internal/logging"
)

// EventType classifies a file change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

var eventTypeNames = [...]string{
	EventTypeCreated:  "created",
	EventTypeModified: "modified",
	EventTypeDeleted:  "deleted",
	EventTypeRenamed:  "renamed",
}

// String returns the lower-case name of the event type.
func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[e]
}

// ChangeEvent is one change to a watched path.
type ChangeEvent struct {
	Type EventType
	Path string
}

// FileFilter reports whether a path is of interest. Every filter must accept
// a path for its events to be delivered.
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of change events.
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// FileWatcher watches configuration files and calls its handlers with
// debounced batches of changes.
type FileWatcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    logging.Logger

	mu       sync.RWMutex
	filters  []FileFilter
	handlers []ChangeHandler
}

// NewFileWatcher creates a watcher that waits for delay of quiet before
// delivering a batch. A nil logger discards log output.
func NewFileWatcher(delay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &FileWatcher{
		fs:        fs,
		debouncer: NewDebouncer(delay),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler.
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath watches a file or directory as given.
func (fw *FileWatcher) AddPath(path string) error {
	abs, err := cleanPath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return fw.fs.Add(abs)
}

// WatchFile watches the directory holding path and filters events down to
// path itself, so the watch survives editors that replace the file by
// renaming over it.
func (fw *FileWatcher) WatchFile(path string) error {
	abs, err := cleanPath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	fw.AddFilter(PathFilter(abs))
	return fw.AddPath(filepath.Dir(abs))
}

func cleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}
	return abs, nil
}

// Start runs the watcher until ctx is cancelled. It returns immediately.
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.deliver(ctx)
	go fw.receive(ctx)
	return nil
}

// Stop releases the fsnotify watcher and cancels any pending batch.
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.fs.Close()
}

// receive forwards fsnotify events to the debouncer.
func (fw *FileWatcher) receive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	fw.mu.RLock()
	filters := fw.filters
	fw.mu.RUnlock()

	for _, accept := range filters {
		if !accept(event.Name) {
			return
		}
	}
	fw.debouncer.submit(ChangeEvent{Type: eventType(event.Op), Path: event.Name})
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventTypeCreated
	case op.Has(fsnotify.Remove):
		return EventTypeDeleted
	case op.Has(fsnotify.Rename):
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

// deliver hands debounced batches to the handlers in registration order.
// A failing handler is logged and does not stop the others.
func (fw *FileWatcher) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-fw.debouncer.Output():
			fw.mu.RLock()
			handlers := fw.handlers
			fw.mu.RUnlock()

			for _, handle := range handlers {
				if err := handle(ctx, batch); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler error", "events", len(batch))
				}
			}
		}
	}
}

// PathFilter accepts only target, compared after cleaning.
func PathFilter(target string) FileFilter {
	target = filepath.Clean(target)
	return func(path string) bool {
		return filepath.Clean(path) == target
	}
}

// NoBackupFilter rejects editor swap and backup files.
func NoBackupFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasSuffix(base, "~") &&
		!strings.HasSuffix(base, ".swp") &&
		!strings.HasPrefix(base, ".#")
}
