// Package watch reports changes to a single file using fsnotify.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/gridplan/infrastructure/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// ErrNotFile is returned when the watched path has no file name.
var ErrNotFile = errors.New("watch target must be a file")

// Watcher invokes a callback after a file has been written.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename-and-replace keep triggering events.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New starts watching path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if filepath.Base(abs) == string(filepath.Separator) {
		return nil, ErrNotFile
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{path: abs, debounce: DefaultDebounce, fs: fsw}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done, calling onChange once per burst of writes.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logging.Warn().
				Add(logging.Component("watch")).
				Add(logging.WorldPath(w.path)).
				Add(logging.ErrorField(err)).
				Msg("file watch error")

		case <-timer.C:
			onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
