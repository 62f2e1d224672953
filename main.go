package main

import (
	_ "embed"
	"os"
	"strings"

	"mfm/cmd"
)

//go:embed VERSION
var version string

func main() {
	// -ldflags "-X mfm/cmd.Version=..." wins over the embedded file.
	if v := strings.TrimSpace(version); v != "" && cmd.Version == "dev" {
		cmd.Version = v
		cmd.ApplyVersion()
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
