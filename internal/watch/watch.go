// Package watch reports live staleness for a snapshot's files using
// filesystem notifications.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bastet/filekitty/internal/history"
)

// StatusOK is reported when a previously stale file matches its
// recorded hash again.
const StatusOK = "ok"

// defaultDebounce suppresses bursts of events for the same file
// (editors write, rename, and chmod in quick succession).
const defaultDebounce = 500 * time.Millisecond

// StatusFunc receives (path, status) transitions. Status is one of
// history.StaleMissing/StaleError/StaleModified or StatusOK.
type StatusFunc func(path, status string)

// Watcher rehashes a snapshot's files when they change on disk and
// reports staleness transitions.
type Watcher struct {
	snap     *history.Snapshot
	onChange StatusFunc
	debounce time.Duration

	hashes   map[string]string // recorded hash per path
	last     map[string]string // last reported status per path
	seen     map[string]time.Time
	hashFile func(string) string
}

// New creates a Watcher for the snapshot's recorded files.
func New(snap *history.Snapshot, onChange StatusFunc) *Watcher {
	return &Watcher{
		snap:     snap,
		onChange: onChange,
		debounce: defaultDebounce,
		hashes:   snap.Hashes(),
		last:     make(map[string]string),
		seen:     make(map[string]time.Time),
		hashFile: history.HashFile,
	}
}

// Run watches until the context is cancelled. Parent directories are
// watched rather than the files themselves so deletes and recreates
// are observed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck // shutting down

	watched := make(map[string]bool)
	tracked := make(map[string]bool)
	for path := range w.hashes {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			continue
		}
		tracked[abs] = true
		dir := filepath.Dir(abs)
		if watched[dir] {
			continue
		}
		if addErr := fsw.Add(dir); addErr != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, addErr)
		}
		watched[dir] = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			abs, absErr := filepath.Abs(event.Name)
			if absErr != nil || !tracked[abs] {
				continue
			}
			if w.debounced(abs) {
				continue
			}
			w.check(abs)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// debounced reports whether an event for path arrived within the
// debounce window of the previous one.
func (w *Watcher) debounced(path string) bool {
	now := time.Now()
	if prev, ok := w.seen[path]; ok && now.Sub(prev) < w.debounce {
		return true
	}
	w.seen[path] = now
	return false
}

// check rehashes one file and reports its status if it changed since
// the last report.
func (w *Watcher) check(abs string) {
	stored := w.hashes[abs]
	if stored == "" {
		// Watcher paths are absolute; recorded paths may not be.
		for path, hash := range w.hashes {
			if p, err := filepath.Abs(path); err == nil && p == abs {
				stored = hash
				break
			}
		}
		if stored == "" {
			return
		}
	}

	current := w.hashFile(abs)
	status := StatusOK
	switch {
	case current == stored:
		status = StatusOK
	case current == history.HashMissing:
		status = history.StaleMissing
	case current == history.HashError:
		status = history.StaleError
	default:
		status = history.StaleModified
	}

	if w.last[abs] == status || (w.last[abs] == "" && status == StatusOK) {
		return
	}
	w.last[abs] = status
	w.onChange(abs, status)
}
