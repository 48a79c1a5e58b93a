package commands

import (
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
)

const unknown = "unknown"

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version output does not depend on the config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			a.printVersion(debug.ReadBuildInfo())
		},
	}
}

func (a *app) printVersion(info *debug.BuildInfo, ok bool) {
	version := a.info.Version
	if version == "" {
		version = "dev"
	}
	a.printf("i18nprep version %s\n", version)

	var vcsRevision, vcsTime, vcsModified string
	if ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				vcsRevision = setting.Value
			case "vcs.time":
				vcsTime = setting.Value
			case "vcs.modified":
				vcsModified = setting.Value
			}
		}
	}

	switch {
	case a.info.Commit != "" && a.info.Commit != unknown:
		a.printf("commit: %s\n", a.info.Commit)
	case vcsRevision != "":
		if len(vcsRevision) > 12 {
			vcsRevision = vcsRevision[:12]
		}
		a.printf("commit: %s\n", vcsRevision)
	}

	switch {
	case a.info.Date != "" && a.info.Date != unknown:
		a.printf("built: %s\n", a.info.Date)
	case vcsTime != "":
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			a.printf("commit date: %s\n", t.Format("2006-01-02 15:04:05 MST"))
		}
	}

	if vcsModified == "true" {
		a.printf("modified: true (uncommitted changes)\n")
	}
	if ok {
		a.printf("go: %s\n", info.GoVersion)
	}
}
