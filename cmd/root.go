package cmd

import (
	"github.com/spf13/cobra"
)

// Version is overwritten from the embedded VERSION file or -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mfm",
	Short: "Media File Manager catalogs media files based on all metadata available",
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion pushes Version into the root command.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	ApplyVersion()
}
