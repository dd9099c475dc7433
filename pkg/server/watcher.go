package server

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// reloadDelay coalesces the burst of events a rebuild produces.
const reloadDelay = 200 * time.Millisecond

// WatchStatic reloads the static path set whenever the tree under dir
// changes. It blocks until ctx is done.
func (c *Container) WatchStatic(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}

	logger := c.logger.WithField("dir", dir)
	logger.Info("Watching static output")

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// new directories are not watched automatically
				if err := addTree(watcher, event.Name); err != nil {
					logger.WithError(err).Warn("Failed to watch new path")
				}
			}
			timer.Reset(reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("Watcher error")

		case <-timer.C:
			if err := c.ReloadStaticPaths(ctx); err != nil {
				logger.WithError(err).Error("Failed to reload static paths")
			}
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		logrus.WithField("path", path).Debug("Watching directory")
		return nil
	})
}
