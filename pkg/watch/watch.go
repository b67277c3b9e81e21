// Package watch re-runs a callback when study files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// logger is the subset of progress.Logger used by the watcher.
type logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Watcher tracks a set of files and reports debounced changes.
// parent directories are watched, so files replaced by editors through rename are still seen.
type Watcher struct {
	paths    []string // absolute, unique, sorted
	debounce time.Duration
	log      logger
}

// New creates a watcher for the given files.
func New(paths []string, debounce time.Duration, log logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}
	if debounce < 0 {
		return nil, fmt.Errorf("negative debounce %v", debounce)
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		abs = append(abs, a)
	}
	slices.Sort(abs)
	return &Watcher{paths: slices.Compact(abs), debounce: debounce, log: log}, nil
}

// Paths returns the absolute paths being watched.
func (w *Watcher) Paths() []string { return slices.Clone(w.paths) }

// Run calls fn once with all watched paths, then again with the changed paths after each
// debounced burst of write, create or rename events. it blocks until ctx is canceled
// and returns nil in that case.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dirs := make([]string, 0, len(w.paths))
	for _, p := range w.paths {
		dirs = append(dirs, filepath.Dir(p))
	}
	slices.Sort(dirs)
	for _, d := range slices.Compact(dirs) {
		if err := fsw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	fn(ctx, w.Paths())

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time // nil while no change is pending
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if _, found := slices.BinarySearch(w.paths, name); !found {
				continue
			}
			w.log.Debug("change detected: %s (%s)", name, ev.Op)
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			fn(ctx, changed)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}
