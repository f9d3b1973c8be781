package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FsWatcher abstracts filesystem event monitoring. Satisfied by
// *fsnotify.Watcher; tests inject a mock implementation.
type FsWatcher interface {
	Add(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

// fsnotifyWrapper adapts *fsnotify.Watcher to the FsWatcher interface.
// fsnotify exposes Events and Errors as public fields, not methods.
type fsnotifyWrapper struct {
	w *fsnotify.Watcher
}

func (fw *fsnotifyWrapper) Add(name string) error         { return fw.w.Add(name) }
func (fw *fsnotifyWrapper) Close() error                  { return fw.w.Close() }
func (fw *fsnotifyWrapper) Events() <-chan fsnotify.Event { return fw.w.Events }
func (fw *fsnotifyWrapper) Errors() <-chan error          { return fw.w.Errors }

// Watcher proactively refreshes a source folder's stale mark as soon as the
// filesystem changes, instead of waiting for the next read to notice via
// NeedsRescan. It only ever fires the same background scan ListFiles already
// triggers on a stale read — fsnotify narrows the window, it never
// replaces the polling fallback.
type Watcher struct {
	coord          *Coordinator
	logger         *slog.Logger
	watcherFactory func() (FsWatcher, error)
}

// NewWatcher returns a Watcher bound to coord. Watch must be called once per
// source folder that should be observed.
func NewWatcher(coord *Coordinator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		coord:  coord,
		logger: logger,
		watcherFactory: func() (FsWatcher, error) {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return nil, err
			}

			return &fsnotifyWrapper{w: w}, nil
		},
	}
}

// Watch adds a recursive watch under sourceFolder and blocks, firing a
// background rescan of the affected folder on every filesystem event, until
// ctx is cancelled. A watch-setup failure is returned; once running, watcher
// errors are logged and do not stop the loop.
func (w *Watcher) Watch(ctx context.Context, sourceFolder string) error {
	watcher, err := w.watcherFactory()
	if err != nil {
		return fmt.Errorf("indexer: creating filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, sourceFolder); err != nil {
		return fmt.Errorf("indexer: adding watches under %s: %w", sourceFolder, err)
	}

	w.logger.Info("indexer: watching source folder for changes", "source_folder", sourceFolder)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}

			w.handleEvent(watcher, sourceFolder, ev)

		case watchErr, ok := <-watcher.Errors():
			if !ok {
				return nil
			}

			w.logger.Warn("indexer: filesystem watcher error", "source_folder", sourceFolder, "error", watchErr)
		}
	}
}

// addRecursive walks sourceFolder and adds a watch on every directory.
func (w *Watcher) addRecursive(watcher FsWatcher, sourceFolder string) error {
	return filepath.WalkDir(sourceFolder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("indexer: walk error during watch setup", "path", path, "error", walkErr)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if addErr := watcher.Add(path); addErr != nil {
			w.logger.Warn("indexer: failed to add watch", "path", path, "error", addErr)
		}

		return nil
	})
}

// handleEvent triggers a background rescan of the folder containing ev, and
// extends the watch to a newly created directory so later events under it
// are seen too.
func (w *Watcher) handleEvent(watcher FsWatcher, sourceFolder string, ev fsnotify.Event) {
	folder := filepath.Dir(ev.Name)

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := watcher.Add(ev.Name); err != nil {
				w.logger.Warn("indexer: failed to extend watch to new directory", "path", ev.Name, "error", err)
			}
		}
	}

	if !w.coord.IsPaused(sourceFolder) {
		w.coord.backgroundScanFolder(folder, sourceFolder)
	}
}
