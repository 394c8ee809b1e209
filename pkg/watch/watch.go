// Package watch re-runs analysis when source files change. Filesystem
// events are debounced so a burst of writes from an editor or generator
// triggers one run instead of many.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	errUtils "github.com/codewarden/warden/errors"
	log "github.com/codewarden/warden/pkg/logger"
)

// DefaultDebounce is the quiet period after the last event before a run.
const DefaultDebounce = 300 * time.Millisecond

// Options configure a watch session.
type Options struct {
	// Debounce overrides the quiet period. Zero means DefaultDebounce.
	Debounce time.Duration
	// ShouldReact filters events; nil reacts to everything.
	ShouldReact func(path string) bool
}

// Run watches the given roots and invokes onChange after each debounced
// batch of relevant events. It blocks until the context is canceled or the
// watcher fails. Errors returned by onChange are logged, not fatal, so a
// run with violations keeps the session alive.
func Run(ctx context.Context, roots []string, opts Options, onChange func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errUtils.Build(errUtils.ErrAnalysis).
			WithCause(err).
			WithHint("filesystem watching may be unavailable on this platform").
			Err()
	}
	defer watcher.Close()

	for _, root := range roots {
		if err := addRecursive(watcher, root); err != nil {
			return err
		}
	}

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	// The timer is created stopped; each relevant event rewinds it.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories join the watch set immediately so files
			// created inside them are seen.
			if event.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}
			if opts.ShouldReact != nil && !opts.ShouldReact(event.Name) {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-timer.C:
			if err := onChange(ctx); err != nil {
				log.Error("analysis run failed", "error", err)
			}
		}
	}
}

// addRecursive registers a directory tree with the watcher. Files are
// covered by watching their parent directory. Symlinked directories are
// not followed.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return errUtils.Build(errUtils.ErrAnalysis).
			WithCause(err).
			WithContext("root", root).
			Err()
	}
	return nil
}
