// Package watch reloads files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// settle is how long a file must stay quiet before its callback runs.
// Editors and exporters often write in several steps.
const settle = 150 * time.Millisecond

type slot struct {
	path string
	fn   func(path string)
}

// Watcher tracks a few named files. Directories are watched rather than
// files so that replace-by-rename saves are seen.
type Watcher struct {
	fsw *fsnotify.Watcher
	log zerolog.Logger

	mu      sync.Mutex
	slots   map[string]slot
	dirRefs map[string]int
	timers  map[string]*time.Timer
}

// New creates a watcher.
func New(log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fsw:     fsw,
		log:     log.With().Str("component", "watch").Logger(),
		slots:   make(map[string]slot),
		dirRefs: make(map[string]int),
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Track points slot at path, replacing what it tracked before. fn runs on
// the watcher goroutine each time the file changes. An empty path stops
// tracking the slot.
func (w *Watcher) Track(name, path string, fn func(path string)) error {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("track %s: %w", path, err)
		}
		path = abs
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.slots[name]; ok {
		if old.path == path {
			w.slots[name] = slot{path, fn}
			return nil
		}
		w.release(filepath.Dir(old.path))
		delete(w.slots, name)
	}
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if w.dirRefs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirRefs[dir]++
	w.slots[name] = slot{path, fn}
	w.log.Debug().Str("slot", name).Str("path", path).Msg("tracking")
	return nil
}

func (w *Watcher) release(dir string) {
	w.dirRefs[dir]--
	if w.dirRefs[dir] > 0 {
		return
	}
	delete(w.dirRefs, dir)
	if err := w.fsw.Remove(dir); err != nil {
		w.log.Debug().Err(err).Str("dir", dir).Msg("unwatch")
	}
}

// Run delivers change callbacks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.changed(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// changed schedules the callbacks for path once writes settle.
func (w *Watcher) changed(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(settle)
		return
	}
	w.timers[path] = time.AfterFunc(settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		var fns []func(string)
		for _, s := range w.slots {
			if s.path == path {
				fns = append(fns, s.fn)
			}
		}
		w.mu.Unlock()

		for _, fn := range fns {
			w.log.Info().Str("path", path).Msg("file changed, reloading")
			fn(path)
		}
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
