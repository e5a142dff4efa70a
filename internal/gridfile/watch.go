package gridfile

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdrpinto/gridpath"
)

// Update is one successful reload of the watched file.
type Update struct {
	Document Document
	Grid     *gridpath.Grid
}

// Watcher reloads a grid file whenever it changes on disk and publishes a
// fresh snapshot. Files that fail to parse are reported on Errors and the
// previous snapshot stays in use.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Updates chan Update
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path. The directory is watched rather than the file
// so editors that replace the file on save are still seen.
func Watch(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		path:    filepath.Clean(path),
		watcher: w,
		Updates: make(chan Update, 4),
		Errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Updates and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Updates)
		close(w.Errors)
	})
	return err
}

// debounce lets a burst of writes settle before the file is re-read.
const debounce = 50 * time.Millisecond

func (w *Watcher) run() {
	defer close(w.done)
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			doc, g, err := Load(w.path)
			if err != nil {
				w.send(nil, err)
				continue
			}
			w.send(&Update{Document: doc, Grid: g}, nil)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			timer.Stop()
			return
		}
	}
}

func (w *Watcher) send(update *Update, err error) {
	if err != nil {
		select {
		case w.Errors <- err:
		case <-w.closeCh:
		}
		return
	}
	select {
	case w.Updates <- *update:
	case <-w.closeCh:
	}
}
