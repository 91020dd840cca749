package nsbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tomprince/bitburner-src/internal/cli"
	"github.com/tomprince/bitburner-src/internal/paths"
)

// debounce is how long the watcher waits for more events before rebuilding.
const debounce = 100 * time.Millisecond

// watch rebuilds whenever a file under dir changes, until ctx is done.
func (b *builder) watch(ctx context.Context, dir string, stderr io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	absOut, _ := filepath.Abs(b.outDir)
	if err := b.addTree(w, dir, absOut); err != nil {
		return err
	}
	cli.Writef(stderr, "watching %s\n", dir)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if inside(ev.Name, absOut) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := b.addTree(w, ev.Name, absOut); err != nil {
						b.log.Warn("watching new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			if !b.apply(dir, ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := b.build(); err != nil {
				cli.Writef(stderr, "nsbuild: %v\n", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watch error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it except hidden ones and
// the output directory.
func (b *builder) addTree(w *fsnotify.Watcher, root, absOut string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if inside(path, absOut) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// apply mirrors a filesystem event onto the server. It reports whether the
// event touched a content file.
func (b *builder) apply(dir string, ev fsnotify.Event) bool {
	rel, err := filepath.Rel(dir, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	name := filepath.ToSlash(rel)
	p, ok := paths.ResolveContentFilePath(name, "")
	if !ok {
		return false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		b.srv.RemoveFile(p)
		b.log.Debug("removed", zap.Stringer("path", p))
		return true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		data, err := os.ReadFile(ev.Name)
		if errors.Is(err, fs.ErrNotExist) {
			b.srv.RemoveFile(p)
			return true
		}
		if err != nil {
			b.log.Warn("reading changed file", zap.String("file", ev.Name), zap.Error(err))
			return false
		}
		if _, err := b.srv.WriteFile(name, string(data)); err != nil {
			b.log.Warn("updating file", zap.String("file", ev.Name), zap.Error(err))
			return false
		}
		b.log.Debug("updated", zap.Stringer("path", p))
		return true
	}
	return false
}

func inside(path, dir string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator))
}
