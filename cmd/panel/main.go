package main

import (
	"os"

	"github.com/hugo-lorenzo-mato/panel-ai/cmd/panel/cmd"
)

// Set by the release pipeline via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
