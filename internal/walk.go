package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Walker traverses an input tree depth-first and maps every regular file
// that has an extension. Entries are visited in the order the directory
// listing yields them.
type Walker struct {
	Builder    *NameBuilder
	Classifier *Classifier
	Logger     hclog.Logger

	Recursive  bool
	SkipHidden bool
	MediaOnly  bool

	// OnMapping, when set, is called for every mapped file.
	OnMapping func(Mapping)

	Summary *Summary
}

// Walk processes root, which may be a directory or a single file. The
// context is checked before every entry; once it is done the walk stops with
// an error wrapping ErrCancelled. Any other failure aborts the whole walk.
func (w *Walker) Walk(ctx context.Context, root string) error {
	if w.Summary == nil {
		w.Summary = NewSummary(root, "")
	}
	if err := checkCancelled(ctx); err != nil {
		return err
	}

	fi, err := os.Stat(root)
	if err != nil {
		return &StatError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return w.processFile(root, fi)
	}
	return w.walkDir(ctx, root)
}

func (w *Walker) walkDir(ctx context.Context, dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	// ReadDir on the handle keeps listing order; os.ReadDir would sort.
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	w.Summary.DirectoriesScanned++
	w.logger().Debug("scanning", "dir", dir, "entries", len(entries))

	for _, entry := range entries {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		if err := w.processEntry(ctx, dir, entry); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) processEntry(ctx context.Context, dir string, entry fs.DirEntry) error {
	name := entry.Name()
	path := filepath.Join(dir, name)
	log := w.logger()

	if w.SkipHidden && strings.HasPrefix(name, ".") {
		log.Trace("skipping hidden entry", "path", path)
		w.Summary.SkippedHidden++
		return nil
	}

	switch {
	case entry.IsDir():
		if !w.Recursive {
			log.Debug("not traversing", "dir", path)
			w.Summary.SkippedDirs++
			return nil
		}
		return w.walkDir(ctx, path)

	case entry.Type().IsRegular():
		fi, err := entry.Info()
		if err != nil {
			return &StatError{Path: path, Err: err}
		}
		return w.processFile(path, fi)

	default:
		log.Debug("skipping non-regular entry", "path", path, "mode", entry.Type())
		w.Summary.SkippedSpecial++
		return nil
	}
}

func (w *Walker) processFile(path string, fi fs.FileInfo) error {
	log := w.logger()

	ext := fileExtension(filepath.Base(path))
	if ext == "" {
		log.Trace("skipping file without extension", "path", path)
		w.Summary.SkippedNoExtension++
		return nil
	}

	mediaType := w.classifier().Classify(ext)
	if w.MediaOnly && mediaType == MediaUnknown {
		log.Debug("skipping non-media file", "path", path)
		w.Summary.SkippedOther++
		return nil
	}

	m, err := w.Builder.Build(path)
	if err != nil {
		return err
	}
	m.Size = fi.Size()

	log.Info(fmt.Sprintf("%s -> %s", path, m.Name()), "type", m.MediaType, "date", m.Timestamp.Provenance)
	log.Debug("destination", "path", m.Destination)
	w.Summary.add(m)
	if w.OnMapping != nil {
		w.OnMapping(m)
	}
	return nil
}

func (w *Walker) logger() hclog.Logger {
	if w.Logger == nil {
		return hclog.NewNullLogger()
	}
	return w.Logger
}

func (w *Walker) classifier() *Classifier {
	if w.Classifier == nil {
		return defaultClassifier
	}
	return w.Classifier
}

func checkCancelled(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
