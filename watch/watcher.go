// Package watch resolves GEDCOM input patterns and watches them for changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 64

	// DefaultDebounce is used when no debounce delay is configured.
	DefaultDebounce = 500 * time.Millisecond
)

// Operation indicates the type of file change.
type Operation string

// OpCreate, OpModify and OpDelete enumerate the change kinds.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is a debounced change to a watched input file.
type Event struct {
	Path      string
	Operation Operation
}

// Watcher reports content changes to files matching a set of roots. Events
// for one file are coalesced over the debounce delay and suppressed when the
// content hash is unchanged.
type Watcher struct {
	roots    []Root
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher for the given roots.
func New(roots []Root, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		roots:    roots,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start records the current content of matching files and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	for _, r := range w.roots {
		if err := w.addRoot(r); err != nil {
			return err
		}
	}
	go w.processEvents(ctx)
	w.logger.Info("Input watcher started", "roots", len(w.roots), "debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Dropped returns the number of events dropped because the channel was full.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) addRoot(r Root) error {
	return filepath.Walk(r.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if r.Match(path) {
				if h, err := hashFile(path); err == nil {
					w.setHash(path, h)
				}
			}
			return nil
		}
		base := filepath.Base(path)
		if path != r.Dir && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}
	if !w.matches(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("Input change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) matches(path string) bool {
	for _, r := range w.roots {
		if r.Match(path) {
			return true
		}
	}
	return false
}

func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path := range batch {
		if ctx.Err() != nil {
			return
		}

		hash, err := hashFile(path)
		if os.IsNotExist(err) {
			if w.deleteHash(path) {
				w.send(Event{Path: path, Operation: OpDelete})
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read input for hash check", "path", path, "error", err)
			continue
		}

		old, had := w.swapHash(path, hash)
		switch {
		case !had:
			w.send(Event{Path: path, Operation: OpCreate})
		case old != hash:
			w.send(Event{Path: path, Operation: OpModify})
		}
	}
}

func (w *Watcher) send(e Event) {
	select {
	case w.events <- e:
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("Event channel full, dropping event", "path", e.Path, "total_dropped", n)
	}
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) swapHash(path, hash string) (string, bool) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	old, ok := w.hashes[path]
	w.hashes[path] = hash
	return old, ok
}

func (w *Watcher) deleteHash(path string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	_, ok := w.hashes[path]
	delete(w.hashes, path)
	return ok
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
