package route

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadEvent reports the outcome of reloading the catalog file.
type ReloadEvent struct {
	DLC     []string
	Special []string
	Err     error
}

// Watcher reloads a Catalog whenever its extensions file changes. The file's
// directory is watched rather than the file itself so that atomic
// rename-into-place writes are seen.
type Watcher struct {
	Path    string
	Reloads <-chan ReloadEvent // Read-only external channel

	catalog  *Catalog
	reloads  chan ReloadEvent
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher that keeps c in sync with the file at path.
func NewWatcher(path string, c *Catalog) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan ReloadEvent, 16)
	return &Watcher{
		Path:     filepath.Clean(path),
		Reloads:  ch,
		catalog:  c,
		reloads:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching. The directory containing Path must exist.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.reloads)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.reload()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.reload()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *Watcher) reload() {
	var evt ReloadEvent
	ext, err := ReadExtensions(w.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// A removed file means no extensions.
		w.catalog.ResetConfiguration()
	case err != nil:
		evt.Err = err
	default:
		w.catalog.ReplaceExtensions(ext.DLC, ext.Special)
	}
	if evt.Err == nil {
		evt.DLC = w.catalog.DLCRoutes()
		evt.Special = w.catalog.SpecialRoutes()
	}

	select {
	case w.reloads <- evt:
	default:
		// Drop when nobody is listening; the catalog is already updated.
	}
}
