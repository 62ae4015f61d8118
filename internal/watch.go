package internal

import (
	"context"
	"crypto/md5"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/argsinto/scanner"
)

// settle is how long a change has to rest before the file is processed, so
// that an editor saving in several steps triggers a single run.
const settle = 100 * time.Millisecond

// Watch rewrites the Go files of dirs, and of their subdirectories, every
// time they are written, until ctx is done. Each run is reported to handle;
// changed files are written back.
func (e *Engine) Watch(ctx context.Context, dirs []string, handle func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	e.logger.Info("watching", zap.Strings("dirs", dirs))

	pending := make(map[string]struct{})
	timer := time.NewTimer(settle)
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
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						e.logger.Warn("cannot watch directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".go") {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watch error", zap.Error(err))
		case <-timer.C:
			for name := range pending {
				delete(pending, name)
				e.handleChange(name, handle)
			}
		}
	}
}

func (e *Engine) handleChange(filename string, handle func(*Result, error)) {
	src, err := os.ReadFile(filename)
	if err != nil {
		// removed or renamed since the event
		e.logger.Debug("skipping unreadable file", zap.String("file", filename), zap.Error(err))
		return
	}
	if e.wroteLast(filename, src) {
		return
	}

	res, err := e.RunSource(filename, src)
	if err == nil {
		err = e.Write(res)
	}
	if handle != nil {
		handle(res, err)
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
		if path != root && scanner.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// remember records content as the last one written to filename.
func (e *Engine) remember(filename string, content []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.written[filename] = hash(content)
}

// wroteLast reports whether content is what the engine last wrote to
// filename, in which case the write event is the engine's own.
func (e *Engine) wroteLast(filename string, content []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.written[filename]
	return ok && h == hash(content)
}

func hash(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
