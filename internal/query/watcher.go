// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query executes SQL statements against the session database.
package query

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces bursts of write events. SQLite touches the
// main file, -wal, and -shm in quick succession during a transaction.
const defaultDebounce = 500 * time.Millisecond

// =============================================================================
// DATABASE FILE WATCHER
// =============================================================================

// Watcher fires a callback when the database file changes on disk,
// debounced so a burst of writes produces one notification. The parent
// directory is watched rather than the file itself: watching the file
// directly breaks when a writer replaces it via rename.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]bool // Base names that count as "the database"
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	pending time.Time // Zero when nothing is pending

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the given database path. onChange runs
// on the watcher's goroutine; it must be safe to call from there.
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = defaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(abs)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		watcher: fsw,
		dir:     filepath.Dir(abs),
		names: map[string]bool{
			base:          true,
			base + "-wal": true,
		},
		debounce: debounce,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}

	return w, nil
}

// Watch starts watching for changes.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents filters file system events down to the database file.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.names[filepath.Base(event.Name)] {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal
			_ = err
		}
	}
}

// processPending fires the callback once a quiet period has elapsed.
func (w *Watcher) processPending() {
	defer func() {
		// A panicking callback must not take the watcher goroutine down
		// with an unrecovered crash.
		if r := recover(); r != nil {
			_ = r
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				w.onChange()
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
