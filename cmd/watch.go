package cmd

import (
	"github.com/spf13/cobra"

	"mfm/internal"
)

var watchCmd = &cobra.Command{
	Use:   "watch [input_path] [output_path]",
	Short: "Imports input_path, then keeps mapping new files until interrupted",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args, internal.Watch)
	},
}

func init() {
	addImportFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
