package blog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/content"
)

// Watch refreshes the cache (and index) whenever files under ContentDir
// change. Bursts of events within WatchDebounce trigger one refresh. It
// returns when ctx is done.
func (a *App) Watch(ctx context.Context) error {
	if a.files == nil {
		return errors.New("blog: watch requires a content directory")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("blog: watch: %w", err)
	}
	defer w.Close()

	if err := addRecursive(w, a.files.Root); err != nil {
		return fmt.Errorf("blog: watch %s: %w", a.files.Root, err)
	}
	a.Logger.Info("watching content", zap.String("dir", a.files.Root))

	timer := time.NewTimer(a.Config.WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !a.relevant(w, ev) {
				continue
			}
			a.Logger.Debug("content changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending++
			timer.Reset(a.Config.WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.Logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := a.Refresh(ctx); err != nil {
				a.Logger.Error("refresh failed", zap.Error(err))
			} else {
				a.Logger.Info("content refreshed", zap.Int("changes", pending))
			}
			pending = 0
		}
	}
}

// relevant reports whether ev touches content, adding newly created
// directories to the watch list.
func (a *App) relevant(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addRecursive(w, ev.Name); err != nil {
				a.Logger.Warn("watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return true
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	return content.IsContentFile(filepath.Base(ev.Name)) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
