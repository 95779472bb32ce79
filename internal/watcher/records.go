// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package watcher reloads the record store when its files change on disk.
package watcher

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/streamwall/streamwall/internal/store"
)

const reloadKey = "records"

// RecordsWatcher watches the store's directories so records edited or
// imported externally are picked up without a restart.
type RecordsWatcher struct {
	mu        sync.Mutex
	records   *store.Store
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewRecordsWatcher starts watching the store's directories. Changes are
// debounced so an import touching many files triggers one reload.
func NewRecordsWatcher(records *store.Store, debounce time.Duration) (*RecordsWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &RecordsWatcher{
		records:   records,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounce),
		closeCh:   make(chan struct{}),
	}

	for _, dir := range []string{records.Dir(), records.ProfilesDir(), records.LayoutsDir()} {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// Close stops the watcher and releases resources.
func (w *RecordsWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	w.watcher.Close()
	w.wg.Wait()
	return nil
}

func (w *RecordsWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

func (w *RecordsWatcher) handleEvent(event fsnotify.Event) {
	// The store writes records as .tmp then renames; reacting to the .tmp
	// write would reload on every save.
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.debouncer.Debounce(reloadKey, func() {
		if err := w.records.Reload(); err != nil {
			log.Printf("watcher: reload records: %v", err)
		}
	})
}
