package inbox

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mdnote/internal/storage"
)

// settleDelay debounces bursts of write events for one file.
const settleDelay = 200 * time.Millisecond

// Watch imports existing files, then follows root with fsnotify and
// imports every created or modified .md file until ctx is cancelled.
// Directories created at runtime are added to the watch list. Removing a
// file leaves its note in place.
func (im *Importer) Watch(ctx context.Context, fsys *storage.FS) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := fsys.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	if n, err := im.Scan(ctx); err != nil {
		im.logger.Warn("inbox: initial scan failed", slog.String("error", err.Error()))
	} else {
		im.logger.Info("inbox: initial scan", slog.Int("imported", n))
	}
	im.logger.Info("inbox: watching", slog.String("root", root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(settleDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			im.logger.Info("inbox: stopped")
			return nil

		case <-timer.C:
			for rel := range pending {
				if _, err := im.importFile(ctx, rel); err != nil {
					im.logger.Warn("inbox: import failed", slog.String("path", rel), slog.String("error", err.Error()))
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			rel, ok := fsys.Rel(ev.Name)
			if !ok || storage.IsHidden(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						im.logger.Warn("inbox: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Files may land before the directory is watched.
					if _, scanErr := im.Scan(ctx); scanErr != nil {
						im.logger.Warn("inbox: scan failed", slog.String("error", scanErr.Error()))
					}
					continue
				}
			}

			if !storage.IsMarkdown(ev.Name) {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(settleDelay)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
