// Package watcher reports changes to PDFs and ZIP archives below a directory
// using fsnotify. Directories created after the watch starts are added as
// they appear.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

const changeBuffer = 64

// Watcher watches directory trees with fsnotify.
type Watcher struct {
	skipHidden bool
}

// New creates a watcher. With skipHidden, dot-directories are not watched
// and dot-files are not reported.
func New(skipHidden bool) *Watcher {
	return &Watcher{skipHidden: skipHidden}
}

// Watch starts watching root and every directory below it.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan driven.FileChange, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.addTree(fw, root); err != nil {
		fw.Close()
		return nil, err
	}

	out := make(chan driven.FileChange, changeBuffer)
	go w.loop(ctx, fw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- driven.FileChange) {
	defer close(out)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
				}
			}
			change := w.handleEvent(event)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// addTree adds dir and its subdirectories.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			logger.Debug("watch: skipping %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && w.skipHidden && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			if p == dir {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			logger.Debug("watch: cannot add %s: %v", p, err)
		}
		return nil
	})
}

// handleEvent maps an fsnotify event to a change, or nil when it is not
// relevant. New directories are reported since they may arrive full of PDFs.
func (w *Watcher) handleEvent(event fsnotify.Event) *driven.FileChange {
	name := filepath.Base(event.Name)
	if w.skipHidden && isHidden(name) {
		return nil
	}

	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove):
		op = "remove"
	case event.Has(fsnotify.Rename):
		op = "rename"
	default:
		return nil
	}

	if op == "create" {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return &driven.FileChange{Path: event.Name, Op: op}
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("watch: stat %s: %v", event.Name, err)
		}
	}

	if !isCandidate(name) {
		return nil
	}
	return &driven.FileChange{Path: event.Name, Op: op}
}

func isCandidate(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".zip":
		return true
	default:
		return false
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
