package live

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// Event is a change to a watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Removed reports whether the file is gone.
func (e Event) Removed() bool {
	return e.Op&(fsnotify.Remove|fsnotify.Rename) != 0
}

// Watcher watches a directory tree and reports changes to matching files.
type Watcher struct {
	root     string
	match    func(path string) bool
	onChange func(Event)
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	exclude  []string // absolute directories neither watched nor reported
}

// NewWatcher watches root and every directory below it, except the exclude
// directories and everything under them. Only paths accepted by match are
// reported; a nil match accepts everything.
func NewWatcher(root string, match func(string) bool, onChange func(Event), logger *slog.Logger, exclude ...string) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrWatchInit, err, "failed to create file watcher")
	}

	w := &Watcher{root: root, match: match, onChange: onChange, logger: logger, fsw: fsw}
	for _, dir := range exclude {
		if abs, err := filepath.Abs(dir); err == nil {
			w.exclude = append(w.exclude, abs)
		}
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, alerr.Wrap(alerr.ErrWatchInit, err, "failed to watch directory").
			With("path", root)
	}
	return w, nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run delivers events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.excluded(event.Name) {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.match != nil && !w.match(event.Name) {
		return
	}
	w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
	if w.onChange != nil {
		w.onChange(Event{Path: event.Name, Op: event.Op})
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && w.excluded(path) {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
}

// excluded reports whether path is an excluded directory or lies below one.
func (w *Watcher) excluded(path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.exclude {
		if Within(abs, dir) {
			return true
		}
	}
	return false
}

// Within reports whether path is dir or lies below it. Both are compared as
// absolute, cleaned paths.
func Within(path, dir string) bool {
	ap, err1 := filepath.Abs(path)
	ad, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(ad, ap)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
