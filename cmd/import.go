package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"mfm/internal"
)

var (
	noTraverseFlag    bool
	useExifToolFlag   bool
	contextLevelsFlag int
	mediaOnlyFlag     bool
	skipHiddenFlag    bool
	jsonFlag          bool
)

var importCmd = &cobra.Command{
	Use:   "import [input_path] [output_path]",
	Short: "Imports media files from input_path placing them under output_path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args, internal.Import)
	},
}

type importFunc func(context.Context, internal.ImportOptions) (*internal.Summary, error)

func runImport(cmd *cobra.Command, args []string, run importFunc) error {
	cmd.SilenceUsage = true

	conf, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, conf)

	logger, logCloser, err := internal.NewLogger(conf)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	reader, closeReader, err := internal.OpenMetadataReader(conf)
	if err != nil {
		return err
	}
	defer closeReader()

	ctx, stop := notifyInterrupt(cmd.Context(), logger)
	defer stop()

	opts := internal.ImportOptions{
		InputPath:  args[0],
		OutputPath: args[1],
		NoTraverse: noTraverseFlag,
		Config:     conf,
		Reader:     reader,
		Logger:     logger,
	}

	var plan *internal.PlanWriter
	if jsonFlag {
		plan = internal.NewPlanWriter(cmd.OutOrStdout())
		opts.OnMapping = func(m internal.Mapping) {
			if err := plan.WriteMapping(m); err != nil {
				logger.Warn("failed to write plan", "error", err)
			}
		}
	}

	logger.Info("importing media files...")
	summary, err := run(ctx, opts)

	cancelled := internal.IsCancelled(err)
	if err != nil && !cancelled {
		cmd.SilenceErrors = true
		procErr := internal.CategorizeError(args[0], err)
		logger.Error(fmt.Sprintf("Error: %v", err), "category", procErr.Category, "suggestion", procErr.Suggestion)
		return err
	}

	if summary != nil {
		if plan != nil {
			if err := plan.WriteSummary(summary, cancelled); err != nil {
				logger.Warn("failed to write plan", "error", err)
			}
		} else {
			internal.DisplaySummary(cmd.OutOrStdout(), summary)
		}
	}

	if cancelled {
		logger.Info("import interrupted")
		return nil
	}
	logger.Info("Done")
	return nil
}

// applyFlags lets explicitly set flags override config values.
func applyFlags(cmd *cobra.Command, conf *internal.Config) {
	flags := cmd.Flags()
	if flags.Changed("exiftool") {
		conf.UseExifTool = useExifToolFlag
	}
	if flags.Changed("context-levels") {
		conf.ContextLevels = contextLevelsFlag
	}
	if flags.Changed("media-only") {
		conf.MediaOnly = mediaOnlyFlag
	}
	if flags.Changed("skip-hidden") {
		conf.SkipHidden = skipHiddenFlag
	}
}

// notifyInterrupt returns a context that is cancelled once on SIGINT or
// SIGTERM. A second signal falls through to the default handler.
func notifyInterrupt(parent context.Context, logger hclog.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			logger.Info("shutting down...", "signal", sig)
			signal.Stop(sigs)
			cancel(fmt.Errorf("received %s", sig))
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel(nil)
	}
}

func addImportFlags(c *cobra.Command) {
	c.Flags().BoolVar(&noTraverseFlag, "no-traverse", false, "Do not traverse input directory")
	c.Flags().BoolVar(&useExifToolFlag, "exiftool", false, "Force to use exiftool binary")
	c.Flags().IntVar(&contextLevelsFlag, "context-levels", 1, "Parent folder names to keep in destination names")
	c.Flags().BoolVar(&mediaOnlyFlag, "media-only", false, "Skip files that are neither images nor videos")
	c.Flags().BoolVar(&skipHiddenFlag, "skip-hidden", false, "Skip hidden files and folders")
	c.Flags().BoolVar(&jsonFlag, "json", false, "Print the import plan as JSON lines")
}

func init() {
	addImportFlags(importCmd)
	rootCmd.AddCommand(importCmd)
}
