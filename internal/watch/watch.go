// Package watch triggers rebuilds when the source outline changes on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Callback is invoked after the debounce window closes on a burst of
// source-file changes.
type Callback func(ctx context.Context)

// Watch observes the source file until ctx is cancelled and calls cb after
// each change burst.
//
// The watch is placed on the parent directory, not the file itself: most
// editors save via rename, which would silently detach a file-level watch.
// Events are debounced so one save producing several fs events triggers a
// single rebuild.
func Watch(ctx context.Context, sourcePath string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	name := filepath.Base(abs)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	logger.Info("watcher: started", slog.String("source", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
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
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			cb(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: source changed", slog.String("op", ev.Op.String()))
			schedule()

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", werr.Error()))
		}
	}
}
