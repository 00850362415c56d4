package fs

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/canship/internal/ports"
)

// Watcher calls a function whenever a file is written or re-created.
// Bursts of events within the debounce delay trigger one call.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   ports.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path.
func NewWatcher(path string, debounce time.Duration, logger ports.Logger) *Watcher {
	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger,
	}
}

// Run watches the file's directory until ctx is done. onChange is never
// called concurrently with itself.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// editors replace files by rename, so watch the directory
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(w.path)

	var run sync.Mutex
	trigger := func() {
		run.Lock()
		defer run.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange(ctx)
	}
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("file changed", ports.String("file", event.Name), ports.String("op", event.Op.String()))
			w.schedule(trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", ports.Err(err))
		}
	}
}

func (w *Watcher) schedule(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, fn)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
