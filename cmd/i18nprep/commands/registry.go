package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRegistryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Build and inspect the attribute localizability registry",
	}
	cmd.AddCommand(newRegistryBuildCommand(a), newRegistryShowCommand(a))
	return cmd
}

func newRegistryBuildCommand(a *app) *cobra.Command {
	f := &processFlags{}
	cmd := &cobra.Command{
		Use:   "build [files or directories...]",
		Short: "Collect inline text-attr declarations into the registry file",
		Long: `Build runs every qualifying template through registry construction instead of
extraction. Declarations are merged into --registry-file (JSON, or YAML by
extension), or printed as JSON when no file is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			a.cfg.Preprocess.BuildRegistry = true
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			_, err := a.process(cmd.Context(), args, "")
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.registryFile, "registry-file", "", "JSON or YAML registry to merge into")
	flags.StringSliceVarP(&f.registry, "registry", "r", nil, "Attribute repository documents to load first")
	flags.StringVar(&f.precedence, "precedence", "tag", "Registry precedence: tag or wildcard")
	flags.BoolVar(&f.force, "force", false, "Process documents that do not import the i18n behavior")
	return cmd
}

func newRegistryShowCommand(a *app) *cobra.Command {
	var (
		format  string
		sources []string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the registry loaded from the registry file and repository documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("registry") {
				a.cfg.Preprocess.RegistrySourcePaths = sources
			}
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			loaded := store.LoadSources(cmd.Context(), a.logger, a.cfg.Preprocess.RegistrySourcePaths...)
			a.logger.Debug("loaded registry sources", "count", loaded)

			var data []byte
			switch format {
			case "yaml":
				data, err = yaml.Marshal(store.ToMap())
			case "json":
				data, err = json.MarshalIndent(store.ToMap(), "", "  ")
			default:
				return fmt.Errorf("unsupported format %q (use json or yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to encode registry: %w", err)
			}
			a.printf("%s\n", data)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringSliceVarP(&sources, "registry", "r", nil, "Attribute repository documents to load")
	return cmd
}
