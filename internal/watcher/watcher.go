// Package watcher monitors a source tree and reports changed files after a
// debounce quiet period.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree recursively. Changed file paths are
// batched and handed to the callback once writes quiet down.
type Watcher struct {
	fs       *fsnotify.Watcher
	rootDir  string
	matches  func(relPath string) bool
	skipDir  func(relPath string) bool
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher over rootDir. Both filters receive slash-separated
// paths relative to rootDir: matches decides which files trigger the
// callback, skipDir prunes directory subtrees from being watched at all.
func New(rootDir string, matches, skipDir func(relPath string) bool, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		rootDir:  rootDir,
		matches:  matches,
		skipDir:  skipDir,
		debounce: defaultDebounce,
		log:      logger.With("component", "watcher"),
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if err := w.watchTree(rootDir); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, invoking callback with each
// debounced batch of changed files.
func (w *Watcher) Run(ctx context.Context, callback func(files []string)) error {
	defer close(w.done)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchTree(event.Name); err != nil {
						w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			rel, ok := w.relevant(event)
			if !ok {
				continue
			}

			w.mu.Lock()
			w.pending[rel] = struct{}{}
			w.mu.Unlock()
			w.resetTimer(fire)

		case <-fire:
			batch := w.drain()
			if len(batch) > 0 {
				callback(batch)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Close shuts down the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

// relevant filters events down to write/create/remove of matching files.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return "", false
	}
	rel, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.matches != nil && !w.matches(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]struct{})
	return files
}

func (w *Watcher) resetTimer(fire chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-fire:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// watchTree registers every directory under root with the watcher.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.log.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir != nil && path != w.rootDir {
			if rel, err := filepath.Rel(w.rootDir, path); err == nil && w.skipDir(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
