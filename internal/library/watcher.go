package library

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/avriley/tonearm/internal/events"
)

// Watcher reports create/remove/rename events for audio files in the music
// directory by publishing events.LibraryChanged on the bus.
type Watcher struct {
	watcher *fsnotify.Watcher
	bus     *events.Bus
	done    chan struct{}
	debug   bool
}

func NewWatcher(dir string, bus *events.Bus, debug bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		bus:     bus,
		done:    make(chan struct{}),
		debug:   debug,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !acceptedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.debug {
				log.Printf("[LIBRARY] Directory change: %s %s", event.Op, event.Name)
			}
			w.bus.Publish(events.LibraryChanged, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.debug {
				log.Printf("[LIBRARY] Watcher error: %v", err)
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
