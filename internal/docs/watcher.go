package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher keeps a presence index of the documents in a local folder so the
// interface can mark missing attachments without touching the disk.
type Watcher struct {
	dir      string
	patterns []string
	log      *zap.SugaredLogger

	mu       sync.RWMutex
	present  map[string]struct{}
	onChange func()
}

// NewWatcher watches dir for files matching any of patterns (e.g. "*.pdf").
func NewWatcher(dir string, patterns []string, logger *zap.SugaredLogger) *Watcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(patterns) == 0 {
		patterns = []string{"*.pdf"}
	}
	return &Watcher{dir: dir, patterns: patterns, log: logger, present: map[string]struct{}{}}
}

// OnChange registers a callback run after the index changes.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *Watcher) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range w.patterns {
		if ok, _ := filepath.Match(strings.ToLower(strings.TrimSpace(pat)), lower); ok {
			return true
		}
	}
	return false
}

// Scan rebuilds the index from the directory listing.
func (w *Watcher) Scan() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		present[e.Name()] = struct{}{}
	}
	w.mu.Lock()
	w.present = present
	w.mu.Unlock()
	return nil
}

// Present reports whether name was in the folder at the last update.
func (w *Watcher) Present(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.present[name]
	return ok
}

// Names returns the indexed names in order.
func (w *Watcher) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.present))
	for n := range w.present {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Run scans once and then follows filesystem events until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Scan(); err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}
	w.log.Infow("watching documents", "dir", w.dir, "patterns", strings.Join(w.patterns, ","))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.apply(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)
		}
	}
}

func (w *Watcher) apply(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !w.matches(name) {
		return
	}
	w.mu.Lock()
	switch {
	case ev.Op&fsnotify.Create != 0:
		w.present[name] = struct{}{}
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.present, name)
	default:
		w.mu.Unlock()
		return
	}
	fn := w.onChange
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}
