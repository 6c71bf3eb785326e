// Package watch reruns a build whenever the watched source trees change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
	"git.home.luguber.info/inful/walletbuilder/internal/metrics"
)

// BuildFunc runs one full build.
type BuildFunc func(ctx context.Context) error

// Options configure a watch session.
type Options struct {
	// Root anchors the Ignore patterns.
	Root string
	// Paths are watched recursively. Missing paths are skipped.
	Paths       []string
	QuietWindow time.Duration
	MaxDelay    time.Duration
	// Ignore holds doublestar patterns, relative to Root, for paths that never trigger a rebuild.
	Ignore   []string
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Run builds once and then rebuilds after every debounced change until ctx is
// done. Builds never overlap. A failed build is logged and watching continues.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	if build == nil {
		return ferrors.ValidationError("build function is required").Build()
	}
	for _, p := range opts.Ignore {
		if !doublestar.ValidatePattern(p) {
			return ferrors.ConfigError(fmt.Sprintf("invalid watch ignore pattern %q", p)).Build()
		}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	deb, err := NewDebouncer(opts.QuietWindow, opts.MaxDelay)
	if err != nil {
		return err
	}

	watcher, err := setupWatcher(opts)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deb.Run(loopCtx)
	}()
	go func() {
		defer wg.Done()
		runWorker(loopCtx, deb.Requests(), opts, build)
	}()

	deb.Request(CauseInitial)
	opts.Logger.Info("Watching for changes", slog.Any("paths", opts.Paths))

	loopErr := runEventLoop(loopCtx, watcher, deb, opts)

	cancel()
	closeErr := watcher.Close()
	wg.Wait()
	opts.Logger.Info("Watch stopped")

	if loopErr != nil {
		return loopErr
	}
	if closeErr != nil {
		return ferrors.WrapError(closeErr, ferrors.CategoryRuntime, "close watcher").Build()
	}
	return nil
}

func setupWatcher(opts Options) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "fsnotify").Build()
	}

	watched := 0
	for _, p := range opts.Paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			opts.Logger.Warn("Skipping watch path", logfields.Path(p))
			continue
		}
		addDirsRecursive(watcher, p, opts.Logger)
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "no watch path exists: "+strings.Join(opts.Paths, ", ")).Build()
	}
	return watcher, nil
}

// runWorker executes one build per request. A request arriving during a
// build waits in the one-slot queue, so at most one follow-up run is pending.
func runWorker(ctx context.Context, requests <-chan string, opts Options, build BuildFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case cause := <-requests:
			if ctx.Err() != nil {
				return
			}
			opts.Recorder.IncWatchTrigger(cause)
			if cause != CauseInitial {
				opts.Logger.Info("Change detected; rebuilding", slog.String("cause", cause))
			}
			if err := build(ctx); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return
				}
				opts.Logger.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func runEventLoop(ctx context.Context, watcher *fsnotify.Watcher, deb *Debouncer, opts Options) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, deb, opts)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, deb *Debouncer, opts Options) {
	if shouldIgnoreEvent(ev.Name) || matchesIgnore(opts.Root, opts.Ignore, ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(watcher, ev.Name, opts.Logger)
		}
	}
	opts.Logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	deb.Notify()
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports hidden files and editor temp or swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || base == "4913"
}

// matchesIgnore matches path, relative to root, against the ignore patterns.
func matchesIgnore(root string, patterns []string, path string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
