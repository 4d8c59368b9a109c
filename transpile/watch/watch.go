// Package watch regenerates outputs when canonical sources change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile/testgen"
)

// DefaultDebounce collapses bursts of editor writes into one regeneration
const DefaultDebounce = 500 * time.Millisecond

// Trigger describes what a batch of changes requires
type Trigger struct {
	// Units whose class source changed, sorted
	Units []string
	// Tests is set when any canonical test changed
	Tests bool
}

// Callback runs a regeneration for a trigger
type Callback func(Trigger) error

// Watcher watches the canonical class and test directories
type Watcher struct {
	classes  string
	tests    string
	watcher  *fsnotify.Watcher
	callback Callback

	// running serializes callbacks; a flush that fires while the previous
	// regeneration is still running waits for it
	running sync.Mutex

	mu             sync.Mutex
	units          map[string]bool
	testsChanged   bool
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// New watches classes (one <id>.ts per unit) and tests (with its base and
// Exchange subdirectories). Missing test subdirectories are skipped.
func New(classes, tests string, callback Callback) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := fw.Add(classes); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", classes)
	}
	for _, dir := range []string{tests, filepath.Join(tests, testgen.BaseDir), filepath.Join(tests, testgen.UnitDir)} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	return &Watcher{
		classes:        filepath.Clean(classes),
		tests:          filepath.Clean(tests),
		watcher:        fw,
		callback:       callback,
		units:          make(map[string]bool),
		debouncePeriod: DefaultDebounce,
	}, nil
}

// SetDebounce overrides the debounce period
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debouncePeriod = d
}

// Run processes events until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// Only regenerate on Write or Create events
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.handle(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// handle records a changed path and schedules a flush
func (w *Watcher) handle(path string) {
	unit, tests, ok := w.classify(path)
	if !ok {
		return
	}
	logger.Infow("Source changed", logger.FieldFile, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if tests {
		w.testsChanged = true
	} else {
		w.units[unit] = true
	}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.flush)
}

// classify maps a path to a unit id or to the test suite
func (w *Watcher) classify(path string) (unit string, tests bool, ok bool) {
	path = filepath.Clean(path)
	name := filepath.Base(path)
	if filepath.Ext(name) != ".ts" || strings.HasSuffix(name, ".d.ts") || strings.HasPrefix(name, ".") {
		return "", false, false
	}

	if rel, err := filepath.Rel(w.tests, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "", true, true
	}
	if filepath.Dir(path) == w.classes {
		return strings.TrimSuffix(name, ".ts"), false, true
	}
	return "", false, false
}

// flush hands the accumulated trigger to the callback
func (w *Watcher) flush() {
	w.mu.Lock()
	trigger := Trigger{Tests: w.testsChanged}
	for unit := range w.units {
		trigger.Units = append(trigger.Units, unit)
	}
	sort.Strings(trigger.Units)
	w.units = make(map[string]bool)
	w.testsChanged = false
	w.mu.Unlock()

	if len(trigger.Units) == 0 && !trigger.Tests {
		return
	}

	w.running.Lock()
	defer w.running.Unlock()
	if err := w.callback(trigger); err != nil {
		logger.Errorw("Regeneration failed", logger.FieldError, err)
	}
}
