// Package watch wraps the platform filesystem notification facility with
// the registration, debounce, and duplicate-suppression rules of spec
// §4.7. No teacher file watches the filesystem directly; this package
// is built around fsnotify, the only cross-platform notification
// library present anywhere in the retrieval pack.
package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a filesystem change as spec §4.7 requires.
type EventType string

const (
	Created EventType = "created"
	Changed EventType = "changed"
	Renamed EventType = "renamed"
)

// DefaultMinTriggerInterval is the minimum time between two emissions
// for the same registration key before an event is dropped as a
// duplicate.
const DefaultMinTriggerInterval = 2 * time.Second

// Registration describes one watch: a path, an optional glob filter, and
// whether subdirectories are included.
type Registration struct {
	Path      string
	Filter    string // glob pattern matched against the base name; empty matches everything
	Recursive bool
	DebounceMillis int
	MinTriggerInterval time.Duration // zero means DefaultMinTriggerInterval
}

// Callback is invoked, asynchronously, once a debounced event fires.
type Callback func(path string, eventType EventType)

// Watcher owns one fsnotify.Watcher and the debounce/suppression state
// for every registration added to it.
type Watcher struct {
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	mu            sync.Mutex
	registrations map[string]*Registration // keyed by watched directory
	callbacks     map[string]Callback      // keyed by "path:filter"
	lastEmitted   map[string]time.Time     // keyed by "path:filter"
	timers        map[string]*time.Timer   // keyed by "path:filter"

	done chan struct{}
}

// New opens the underlying platform watcher. Callers must call Stop to
// release it.
func New(logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		logger:        logger,
		fsw:           fsw,
		registrations: make(map[string]*Registration),
		callbacks:     make(map[string]Callback),
		lastEmitted:   make(map[string]time.Time),
		timers:        make(map[string]*time.Timer),
		done:          make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func key(path, filter string) string {
	return path + ":" + filter
}

// Register arms the watcher for reg and invokes cb on each debounced,
// non-duplicate event matching reg's filter.
func (w *Watcher) Register(reg Registration, cb Callback) error {
	dir := reg.Path
	if err := w.fsw.Add(dir); err != nil {
		return err
	}

	k := key(reg.Path, reg.Filter)
	w.mu.Lock()
	w.registrations[dir] = &reg
	w.callbacks[k] = cb
	w.mu.Unlock()

	if reg.Recursive {
		err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
			if err != nil || !info.IsDir() || p == dir {
				return nil
			}
			if err := w.fsw.Add(p); err != nil {
				return nil
			}
			w.mu.Lock()
			w.registrations[p] = &reg
			w.mu.Unlock()
			return nil
		})
		if err != nil {
			w.logger.Warn("recursive watch walk failed", "path", dir, "error", err)
		}
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watcher error, attempting to recover", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	dir := filepath.Dir(ev.Name)
	base := filepath.Base(ev.Name)

	w.mu.Lock()
	reg, ok := w.registrations[dir]
	w.mu.Unlock()
	if !ok {
		return
	}
	if reg.Filter != "" {
		matched, err := filepath.Match(reg.Filter, base)
		if err != nil || !matched {
			return
		}
	}

	eventType := classify(ev.Op)
	k := key(reg.Path, reg.Filter)
	w.schedule(k, ev.Name, eventType, reg)
}

func classify(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create != 0:
		return Created
	case op&fsnotify.Rename != 0:
		return Renamed
	default:
		return Changed
	}
}

// schedule applies the two-stage duplicate-suppression and debounce rule
// of spec §4.7: if the key was emitted within MinTriggerInterval, drop
// the event outright; otherwise (re)arm a one-shot timer for debounce_ms.
func (w *Watcher) schedule(k, path string, eventType EventType, reg *Registration) {
	minInterval := reg.MinTriggerInterval
	if minInterval == 0 {
		minInterval = DefaultMinTriggerInterval
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastEmitted[k]; ok && time.Since(last) < minInterval {
		return
	}

	if t, ok := w.timers[k]; ok {
		t.Stop()
	}

	debounce := time.Duration(reg.DebounceMillis) * time.Millisecond
	cb := w.callbacks[k]
	w.timers[k] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		w.lastEmitted[k] = time.Now()
		w.mu.Unlock()
		if cb != nil {
			cb(path, eventType)
		}
	})
}

// Stop disables event raising on all registrations.
func (w *Watcher) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	_ = w.fsw.Close()
}

// Dispose releases every pending debounce timer in addition to stopping
// the watcher. Safe to call after Stop.
func (w *Watcher) Dispose() {
	w.Stop()
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, t := range w.timers {
		t.Stop()
		delete(w.timers, k)
	}
}
