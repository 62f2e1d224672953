package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ImportOptions configures one import run.
type ImportOptions struct {
	InputPath  string
	OutputPath string
	NoTraverse bool

	Config *Config
	Reader MetadataReader
	Logger hclog.Logger

	OnMapping func(Mapping)
}

// importRun is a prepared import: resolved roots and a ready walker.
type importRun struct {
	input   string
	output  string
	walker  *Walker
	summary *Summary
	logger  hclog.Logger
}

// Import canonicalizes the roots, creates the output root when missing and
// walks the input tree. The returned summary is never nil once the roots are
// resolved, even when the walk was cancelled or failed.
func Import(ctx context.Context, opts ImportOptions) (*Summary, error) {
	run, err := prepareImport(opts)
	if err != nil {
		return nil, err
	}
	return run.summary, run.execute(ctx)
}

func prepareImport(opts ImportOptions) (*importRun, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{ImageExt: DefaultImageExtensions, VideoExt: DefaultVideoExtensions, ContextLevels: 1}
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	reader := opts.Reader
	if reader == nil {
		reader = NewDetectingReader()
	}

	input, err := canonicalize(opts.InputPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: input %s: %w", ErrPathNotFound, opts.InputPath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input %s: %w", opts.InputPath, err)
	}
	output, err := prepareOutput(opts.OutputPath, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("import roots", "input", input, "output", output, "no_traverse", opts.NoTraverse)

	summary := NewSummary(input, output)
	classifier := cfg.Classifier()
	resolver := NewResolver(logger.Named("resolve"), summary.Warnings)
	builder := NewNameBuilder(output, reader, resolver, classifier, cfg.ContextLevels, logger)

	return &importRun{
		input:  input,
		output: output,
		walker: &Walker{
			Builder:    builder,
			Classifier: classifier,
			Logger:     logger,
			Recursive:  !opts.NoTraverse,
			SkipHidden: cfg.SkipHidden,
			MediaOnly:  cfg.MediaOnly,
			OnMapping:  opts.OnMapping,
			Summary:    summary,
		},
		summary: summary,
		logger:  logger,
	}, nil
}

func (r *importRun) execute(ctx context.Context) error {
	start := time.Now()
	err := r.walker.Walk(ctx, r.input)
	r.summary.Duration = time.Since(start)
	return err
}

// canonicalize returns the absolute, symlink-free form of an existing path.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// prepareOutput canonicalizes an existing output root, or creates it
// relative to the working directory when it does not exist yet. An existing
// output must be a directory.
func prepareOutput(path string, logger hclog.Logger) (string, error) {
	if out, err := canonicalize(path); err == nil {
		fi, err := os.Stat(out)
		if err != nil {
			return "", &StatError{Path: out, Err: err}
		}
		if !fi.IsDir() {
			return "", fmt.Errorf("output %s is not a directory", out)
		}
		return out, nil
	}

	out := path
	if !filepath.IsAbs(out) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		out = filepath.Join(wd, out)
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", out, err)
	}
	logger.Info("created output directory", "path", out)

	return canonicalize(out)
}
