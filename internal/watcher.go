package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports entries that appear below a root directory. Directories
// created after it started are watched as well, so a new folder and the files
// copied into it are both seen.
type Watcher struct {
	fsw       *fsnotify.Watcher
	recursive bool
	skip      func(name string) bool
	created chan string
	errs    chan error
	stop    chan struct{}
	once    sync.Once
}

// NewWatcher watches root, and its subdirectories when recursive is set.
// Entries whose base name matches skip are neither reported nor descended
// into.
func NewWatcher(root string, recursive bool, skip func(name string) bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}

	w := &Watcher{
		fsw:       fsw,
		recursive: recursive,
		skip:      skip,
		created: make(chan string, 100),
		errs:    make(chan error, 10),
		stop:    make(chan struct{}),
	}
	watch := w.watchTree
	if !recursive {
		watch = w.watchDir
	}
	if err := watch(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(path string) error {
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return nil
}

// run forwards Create events. A rename into the tree arrives as Create for
// the new name; removals and renames away are of no interest.
func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) || w.skip(filepath.Base(ev.Name)) {
				continue
			}
			if fi, err := os.Lstat(ev.Name); err == nil && fi.IsDir() && w.recursive {
				if err := w.watchTree(ev.Name); err != nil {
					w.report(err)
				}
			}
			select {
			case w.created <- ev.Name:
			case <-w.stop:
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)

		case <-w.stop:
			return
		}
	}
}

// report never blocks; errors beyond the buffer are dropped.
func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// Created yields the paths of new files and directories.
func (w *Watcher) Created() <-chan string { return w.created }

func (w *Watcher) Errors() <-chan error { return w.errs }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
	})
	return err
}

// Watch runs a full import and then keeps mapping files that appear under
// the input root until ctx is done. Failures on individual new files are
// logged and do not stop watching.
func Watch(ctx context.Context, opts ImportOptions) (*Summary, error) {
	run, err := prepareImport(opts)
	if err != nil {
		return nil, err
	}
	if err := run.execute(ctx); err != nil {
		return run.summary, err
	}

	if fi, err := os.Stat(run.input); err == nil && !fi.IsDir() {
		return run.summary, fmt.Errorf("cannot watch %s: not a directory", run.input)
	}
	watcher, err := NewWatcher(run.input, run.walker.Recursive, run.skipName)
	if err != nil {
		return run.summary, err
	}
	defer watcher.Close()
	run.logger.Info("watching for new files", "root", run.input)

	for {
		select {
		case <-ctx.Done():
			return run.summary, checkCancelled(ctx)
		case path := <-watcher.Created():
			if err := run.handleCreate(ctx, path); err != nil {
				if IsCancelled(err) {
					return run.summary, err
				}
				run.logger.Error("failed to map new file", "path", path, "error", err)
			}
		case err := <-watcher.Errors():
			run.logger.Warn("watcher error", "error", err)
		}
	}
}

func (r *importRun) skipName(name string) bool {
	return r.walker.SkipHidden && strings.HasPrefix(name, ".")
}

// handleCreate maps a new file, or walks a new directory in recursive mode.
func (r *importRun) handleCreate(ctx context.Context, path string) error {
	if !r.walker.Recursive && filepath.Dir(path) != r.input {
		return nil
	}
	fi, err := os.Lstat(path)
	if err != nil {
		return &StatError{Path: path, Err: err}
	}
	switch {
	case fi.IsDir():
		if !r.walker.Recursive {
			return nil
		}
		return r.walker.walkDir(ctx, path)
	case fi.Mode().IsRegular():
		return r.walker.processFile(path, fi)
	default:
		return nil
	}
}
