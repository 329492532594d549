package assets

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Watch reloads assets whenever their files change on disk, until ctx ends. dir must be the OS directory the Loader's fs.FS
// is rooted at (as with os.DirFS(dir)). Only paths that have been loaded before are reloaded, with the callback of their
// most recent Load; directories are watched as they were when Watch was called.
func (loader *Loader) Watch(ctx context.Context, dir string) error {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer watcher.Close()

	dirs := map[string]bool{dir: true}
	loader.mu.Lock()
	for p := range loader.callbacks {
		dirs[filepath.Join(dir, filepath.Dir(filepath.FromSlash(p)))] = true
	}
	loader.mu.Unlock()

	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return errors.Wrapf(err, "watching %s", d)
		}
	}

	for {
		select {

		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			rel, err := filepath.Rel(dir, event.Name)
			if err != nil {
				continue
			}
			p := cleanPath(filepath.ToSlash(rel))

			loader.mu.Lock()
			callback, known := loader.callbacks[p]
			loader.mu.Unlock()

			if known {
				loader.logger.WithField("path", p).Info("asset changed on disk; reloading")
				loader.Load(p, callback)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			loader.logger.WithError(err).WithFields(logrus.Fields{"dir": dir}).Warn("file watcher error")

		}
	}

}
