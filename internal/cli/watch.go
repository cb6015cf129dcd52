package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce coalesces the burst of events an editor save produces.
const defaultDebounce = 100 * time.Millisecond

// watchInputs runs fn once, then again each time one of paths is written or
// created, until ctx is done. Directories are watched rather than files so
// that atomic saves (write to temp, rename over) are seen. Failures of fn are
// logged and do not stop the loop.
func watchInputs(ctx context.Context, paths []string, debounce time.Duration, log *zap.Logger, fn func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "create file watcher", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("resolve %s", p), err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			// A missing directory is reported by the run as a missing file.
			log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		dirs[dir] = true
	}
	log.Info("watching inputs", zap.Int("files", len(watched)), zap.Int("dirs", len(dirs)))

	runOnce := func() {
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Info("run finished with failures", zap.Error(err))
		}
	}
	runOnce()

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !watched[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("input changed", zap.String("path", name), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}
