package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a StateStore when another crewdeck process rewrites the
// state file. Saves are atomic renames, so the watcher listens on the parent
// directory and filters for the state file name (a rename replaces the inode
// a file-level watch would be pinned to).
type Watcher struct {
	fw    *fsnotify.Watcher
	store *StateStore
	done  chan struct{}
}

// WatchState starts watching the store's state file. onReload, if non-nil,
// is called from the watcher goroutine after every successful reload.
func WatchState(store *StateStore, onReload func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("state: watch: %w", err)
	}

	dir := filepath.Dir(store.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("state: watch %s: %w", dir, err)
	}

	w := &Watcher{fw: fw, store: store, done: make(chan struct{})}
	go w.loop(filepath.Base(store.Path()), onReload)
	return w, nil
}

func (w *Watcher) loop(name string, onReload func()) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.store.Reload(); err != nil {
				continue
			}
			if onReload != nil {
				onReload()
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit. No callback
// fires after Close returns.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
