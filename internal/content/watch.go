package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
)

// Watcher monitors the content root for file changes made outside the
// submission path (git pulls, manual edits) and purges the library's
// document cache so readers never serve stale content. Change bursts
// are debounced into a single purge.
type Watcher struct {
	library      *Library
	watcher      *fsnotify.Watcher
	mu           sync.RWMutex
	stopChan     chan struct{}
	changeChan   chan struct{}
	debounceTime time.Duration
	onChange     func() // optional, runs after each debounced purge
}

// NewWatcher creates a watcher over the library's content root. A
// non-positive debounce falls back to two seconds. onChange may be nil.
func NewWatcher(library *Library, debounce time.Duration, onChange func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "create file watcher").Build()
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		library:      library,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		changeChan:   make(chan struct{}, 1),
		debounceTime: debounce,
		onChange:     onChange,
	}, nil
}

// Start registers the content root and every directory below it, then
// begins monitoring. Directories created later are picked up from
// create events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.library.ensureRoot(); err != nil {
		return err
	}
	if err := w.addRecursive(w.library.Root()); err != nil {
		return err
	}

	w.library.logger.Info("Starting content watcher", logfields.ContentRoot(w.library.Root()))

	go w.watchLoop(ctx)
	go w.purgeLoop(ctx)

	return nil
}

// Stop shuts the watcher down. Safe to call once.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.library.logger.Info("Stopping content watcher")

	close(w.stopChan)
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			w.library.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}
	return nil
}

// addRecursive registers dir and all non-hidden subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "watch content directory").
				WithContext("path", path).
				Build()
		}
		return nil
	})
}

// watchLoop turns raw filesystem events into debounced change triggers.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue // temp files from exclusive writes, editor swap files
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.library.logger.Warn("Failed to watch new directory",
							logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.library.logger.Debug("Content change detected",
					logfields.Path(event.Name))
				w.triggerChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.library.logger.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// purgeLoop debounces change triggers into cache purges.
func (w *Watcher) purgeLoop(ctx context.Context) {
	var purgeTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if purgeTimer != nil {
				purgeTimer.Stop()
			}
			return
		case <-w.stopChan:
			if purgeTimer != nil {
				purgeTimer.Stop()
			}
			return
		case <-w.changeChan:
			if purgeTimer != nil {
				purgeTimer.Stop()
			}
			purgeTimer = time.AfterFunc(w.debounceTime, w.performPurge)
		}
	}
}

// triggerChange schedules a debounced purge; a pending trigger absorbs
// further events.
func (w *Watcher) triggerChange() {
	select {
	case w.changeChan <- struct{}{}:
	default:
	}
}

func (w *Watcher) performPurge() {
	n := w.library.PurgeCache()
	w.library.logger.Info("Content changed on disk, cache purged", logfields.Count(n))
	if w.onChange != nil {
		w.onChange()
	}
}
