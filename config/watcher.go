package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/freekieb7/jsondoc/filesystem"
	"github.com/freekieb7/jsondoc/json"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives every freshly loaded document, or the error that
// prevented loading it. The callback owns doc and must Close it.
type ReloadFunc func(doc *json.Document, err error)

// Watcher reloads a set of sources whenever one of its local files changes.
// File events come from the operating system, so file sources require a
// loader reading from the local filesystem. HTTP sources cannot be watched;
// they are reloaded with the files and, when a poll interval is set, on every
// tick of it.
type Watcher struct {
	loader   *Loader
	sources  []string
	callback ReloadFunc
	debounce time.Duration
	poll     time.Duration
}

func NewWatcher(loader *Loader, sources []string, callback ReloadFunc) *Watcher {
	return &Watcher{
		loader:   loader,
		sources:  sources,
		callback: callback,
		debounce: DefaultDebounce,
	}
}

// SetDebounce changes how long the watcher waits for further events before
// reloading.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// SetPollInterval reloads every d when at least one source is an HTTP URL.
// Zero disables polling.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.poll = d
}

// Run loads the sources once, then reloads on every change until ctx is
// cancelled. Directories are watched rather than files so editors that
// replace a file on save are still noticed.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.sources) == 0 {
		return ErrNoSources
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fsnotify.NewWatcher")
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			w.loader.opts.Logger.ErrorContext(ctx, "closing watcher error", "error", closeErr)
		}
	}()

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	remote := false
	for _, source := range w.sources {
		if isURL(source) {
			remote = true
			continue
		}
		if !filesystem.IsLocal(w.loader.opts.Filesystem) {
			return errors.Wrap(ErrNotWatchable, source)
		}
		path, err := filepath.Abs(source)
		if err != nil {
			return errors.Wrap(err, "filepath.Abs")
		}
		files[path] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for dir := range dirs {
		w.loader.opts.Logger.DebugContext(ctx, "watching directory", "directory", dir)
		if err := watcher.Add(dir); err != nil {
			return errors.Wrap(err, "watcher.Add")
		}
	}

	w.reload(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var tick <-chan time.Time
	if remote && w.poll > 0 {
		ticker := time.NewTicker(w.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, watched := files[path]; !watched {
				continue
			}
			w.loader.opts.Logger.DebugContext(ctx, "configuration file changed", "file", path, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.loader.opts.Logger.ErrorContext(ctx, "watcher error", "error", err)
		case <-timer.C:
			w.reload(ctx)
		case <-tick:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	doc, err := w.loader.Load(ctx, w.sources...)
	if err != nil {
		w.loader.opts.Logger.WarnContext(ctx, "configuration reload failed", "error", err)
	} else {
		w.loader.opts.Logger.InfoContext(ctx, "configuration reloaded", "sources", len(w.sources))
	}
	w.callback(doc, err)
}
