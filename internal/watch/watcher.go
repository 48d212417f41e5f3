// Package watch lints shader files as they change on disk. It stands in for
// an editor host: every write of a shader file starts an independent lint
// request, and whichever result arrives last for a path wins.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/dotcommander/glsllint/internal/lint"
	"github.com/dotcommander/glsllint/internal/shader"
)

// DefaultIgnore lists directory names that are never watched.
var DefaultIgnore = []string{".git", "node_modules"}

// Linter is the part of lint.Session the watcher needs.
type Linter interface {
	Lint(ctx context.Context, path, content string) (*lint.Report, error)
}

// Event is the outcome of one lint request triggered by a change.
//
// A nil Report with a nil Err means the request failed internally and the
// previous diagnostics for Path should stay.
type Event struct {
	Path   string
	Report *lint.Report
	Err    error
}

// Handler receives events. It is called from multiple goroutines.
type Handler func(Event)

// Watcher watches a directory tree for shader writes.
//
// Thread Safety: Start and Stop may be called from any goroutine.
type Watcher struct {
	root    string
	linter  Linter
	handler Handler
	exclude []string

	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	// loop tracks processEvents; tasks may only grow while it runs.
	loop  sync.WaitGroup
	tasks sync.WaitGroup

	mu       sync.Mutex
	watching bool
}

// New creates a Watcher for root. Paths matching an exclude glob (relative
// to root, doublestar syntax) are ignored.
func New(root string, linter Linter, handler Handler, exclude ...string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    abs,
		linter:  linter,
		handler: handler,
		exclude: exclude,
		fsw:     fsw,
		done:    make(chan struct{}),
	}, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Start adds the directory tree and begins delivering events until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return err
	}

	w.loop.Add(1)
	go func() {
		defer w.loop.Done()
		w.processEvents(ctx)
	}()
	return nil
}

// Stop stops watching and waits for the event loop and in-flight lint
// requests to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
	w.loop.Wait()
	w.tasks.Wait()
}

// addRecursive adds dir and its subdirectories to the watch list.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// ignored reports whether path is in an ignored directory or excluded.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		for _, name := range DefaultIgnore {
			if part == name {
				return true
			}
		}
	}
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if w.ignored(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Cannot watch directory",
					slog.String("dir", event.Name),
					slog.String("error", err.Error()),
				)
			}
		}
		return
	}
	if !shader.IsShaderPath(event.Name) {
		return
	}

	w.tasks.Add(1)
	go func() {
		defer w.tasks.Done()
		w.lintFile(ctx, event.Name)
	}()
}

// lintFile runs one lint request for path and delivers its outcome.
func (w *Watcher) lintFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Removed or renamed between the event and the read.
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		w.deliver(Event{Path: path, Err: err})
		return
	}

	report, err := w.linter.Lint(ctx, path, string(data))
	if ctx.Err() != nil {
		return
	}
	w.deliver(Event{Path: path, Report: report, Err: err})
}

func (w *Watcher) deliver(e Event) {
	select {
	case <-w.done:
		return
	default:
	}
	if w.handler != nil {
		w.handler(e)
	}
}
