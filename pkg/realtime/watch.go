package realtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a Watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc rebuilds whatever depends on the watched files.
type ReloadFunc func(ctx context.Context) error

// Watcher calls a ReloadFunc when files under a directory change, then tells
// the hub. Bursts of events (editors writing temp files, a bulk copy) collapse
// into one reload.
type Watcher struct {
	root     string
	reload   ReloadFunc
	hub      *Hub
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches root and every directory below it. hub may be nil.
func NewWatcher(root string, reload ReloadFunc, hub *Hub, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{root: root, reload: reload, hub: hub, debounce: debounce, watcher: fw}
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	return w, nil
}

func (w *Watcher) add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("adding watch on %s: %w", dir, err)
	}
	logger.Debugf("watching %s", dir)
	return nil
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// settle is nil while nothing is pending.
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debugf("change detected: %s (%s)", event.Name, event.Op)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.add(event.Name); err != nil {
						logger.Warnf("%v", err)
					}
				}
			}
			settle = time.After(w.debounce)
		case <-settle:
			settle = nil
			w.fire(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	logger.Infof("Data in %s changed, reloading", w.root)
	if err := w.reload(ctx); err != nil {
		logger.Errorf("reload failed: %v", err)
		return
	}
	if w.hub != nil {
		w.hub.Reload()
	}
}
