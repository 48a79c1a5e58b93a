// Package commands implements the i18nprep command tree.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/livefir/i18nprep/cmd/i18nprep/internal/config"
	"github.com/livefir/i18nprep/internal/logging"
)

// BuildInfo is injected by main at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app carries what every subcommand shares after the root pre-run.
type app struct {
	info   BuildInfo
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info}

	root := &cobra.Command{
		Use:           "i18nprep",
		Short:         "Extract localizable text from component templates into message bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to i18nprep.yaml or i18nprep.toml (default: search the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newProcessCommand(a),
		newRegistryCommand(a),
		newVerifyCommand(a),
		newCatalogCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(info BuildInfo) error {
	return NewRootCommand(info).Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	path := a.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigPath(wd)
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logging.New(a.errOut, level, cfg.LogFormat == "json")
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
