// Package watch reports changes in asset input directories, coalescing
// bursts of events so a save touching several files triggers one rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bianoble/assetpack/internal/logging"
)

// DefaultDebounce is the quiet period used when Watcher.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange with the set of directories that saw changes once
// no further events arrived for Debounce. OnChange runs on the Run
// goroutine; events arriving meanwhile are batched for the next call.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Logger   *zap.Logger
	OnChange func(ctx context.Context, dirs []string)
}

// Run watches until ctx is canceled. Directories that do not exist are
// skipped with a warning; it is an error if none can be watched.
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	logger := logging.OrNop(w.Logger)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, dir := range w.Dirs {
		dir = filepath.Clean(dir)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn("not watching missing directory", zap.String("dir", dir))
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("watching", zap.String("dir", dir))
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no directories to watch (%s)", strings.Join(w.Dirs, ", "))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("change detected", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			pending[filepath.Dir(ev.Name)] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			dirs := make([]string, 0, len(pending))
			for dir := range pending {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			clear(pending)
			w.OnChange(ctx, dirs)
		}
	}
}

// relevant filters out chmod-only events and files that are never inputs:
// dotfiles (including the store's temp files) and editor backups.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
