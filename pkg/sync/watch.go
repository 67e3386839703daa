package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/entrhq/webcanvas/pkg/logging"
)

// DefaultDebounce coalesces bursts of file events into one pass. Editors
// and the host's own whole-document rewrites produce several events per
// logical change.
const DefaultDebounce = 200 * time.Millisecond

// WatchTrigger fires a pass whenever the canvas document changes on disk.
// The watch covers the document's directory because atomic rewrites
// (temp file plus rename) replace the watched inode.
type WatchTrigger struct {
	// Path is the canvas document path.
	Path string

	// Debounce is the quiet period after the last event before a pass
	// fires. Zero means DefaultDebounce.
	Debounce time.Duration

	// Logger receives watch diagnostics. Nil creates a component logger.
	Logger *logging.Logger
}

// Run watches the document until ctx is cancelled. An initial pass runs
// before the first event so a freshly started daemon converges without
// waiting for an edit.
func (w *WatchTrigger) Run(ctx context.Context, pass func(context.Context)) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := w.Logger
	if log == nil {
		log, _ = logging.NewLogger("watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Infof("watching %s", w.Path)

	pass(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Infof("watch stopped")
			return ctx.Err()

		case <-fire:
			pass(ctx)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.Path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch error: %v", err)
		}
	}
}
