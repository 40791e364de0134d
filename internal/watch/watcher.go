// Package watch triggers a new measurement whenever the receiver or
// transmitter executable is rebuilt.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/chanbench/internal/log"
)

// DefaultDebounce collapses the burst of events a compiler or linker emits
// while writing a binary.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files through their parent directories, so that
// files replaced by rename are still noticed. Directories are registered
// when the Watcher is created; changes made before Run is called are
// queued and trigger the first call.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	log      log.Logger
}

// New starts watching the directories holding paths.
func New(paths []string, debounce time.Duration, logger log.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	files := make(map[string]bool, len(paths))
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
		logger.Info("watching for rebuilt binaries", log.String("dir", d))
	}
	return &Watcher{fsw: fsw, files: files, debounce: debounce, log: logger}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls fn once per debounced burst of changes until ctx is done.
// fn runs on the Run goroutine, so at most one call is active at a time and
// events arriving meanwhile coalesce into a single follow-up call.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("binary changed", log.String("file", event.Name), log.String("op", event.Op.String()))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			fn(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", log.Err(err))
		}
	}
}
