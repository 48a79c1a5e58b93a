package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/livefir/i18nprep/cmd/i18nprep/internal/ui"
	"github.com/livefir/i18nprep/internal/catalog"
)

func newCatalogCommand(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the message catalog recorded by process --catalog",
	}
	cmd.PersistentFlags().StringVar(&path, "catalog", "", "SQLite catalog file (default: from config)")

	open := func(cmd *cobra.Command) (*catalog.Catalog, error) {
		if path == "" {
			path = a.cfg.Catalog
		}
		if path == "" {
			return nil, fmt.Errorf("no catalog configured (use --catalog or the catalog config key)")
		}
		return catalog.Open(cmd.Context(), path, a.logger)
	}

	diff := &cobra.Command{
		Use:   "diff",
		Short: "Show message keys added, removed or changed by the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			d, err := cat.Diff(cmd.Context())
			if errors.Is(err, catalog.ErrNoRun) {
				a.printf("No runs recorded\n")
				return nil
			}
			if err != nil {
				return err
			}
			ui.CatalogDiff(a.out, d.Run, d.Previous, catalogChanges(d))
			return nil
		},
	}

	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			list, err := cat.Runs(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.printf("No runs recorded\n")
				return nil
			}
			for _, r := range list {
				label := r.Label
				if label == "" {
					label = "-"
				}
				a.printf("%d\t%s\t%s\t%d messages\n", r.ID, r.CreatedAt.Format(time.RFC3339), label, r.Messages)
			}
			return nil
		},
	}

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}
			cat, err := open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			n, err := cat.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			a.printf("Pruned %d runs\n", n)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 2, "Number of runs to keep")

	cmd.AddCommand(diff, runs, prune)
	return cmd
}

func catalogChanges(d *catalog.Diff) []ui.Change {
	changes := make([]ui.Change, 0, len(d.Added)+len(d.Removed)+len(d.Changed))
	add := func(kind string, list []catalog.Change) {
		for _, c := range list {
			changes = append(changes, ui.Change{Kind: kind, Component: c.Component, Key: c.Key, Old: c.Old, New: c.New})
		}
	}
	add("added", d.Added)
	add("removed", d.Removed)
	add("changed", d.Changed)
	return changes
}
