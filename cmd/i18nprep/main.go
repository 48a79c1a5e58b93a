package main

import (
	"os"

	"github.com/livefir/i18nprep/cmd/i18nprep/commands"
	"github.com/livefir/i18nprep/cmd/i18nprep/internal/ui"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := commands.Execute(commands.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err != nil {
		ui.Error(os.Stderr, err)
		os.Exit(1)
	}
}
