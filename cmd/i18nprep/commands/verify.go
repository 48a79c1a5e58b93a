package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/livefir/i18nprep"
	"github.com/livefir/i18nprep/cmd/i18nprep/internal/ui"
	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/component"
	"github.com/livefir/i18nprep/internal/markup"
	"github.com/livefir/i18nprep/internal/verify"
)

// ErrUnresolved is returned when a verified document has bindings that do
// not resolve in its bundles.
var ErrUnresolved = errors.New("unresolved bundle references")

func newVerifyCommand(a *app) *cobra.Command {
	var bundleDir string
	cmd := &cobra.Command{
		Use:   "verify [files or directories...]",
		Short: "Check that every binding in rewritten documents resolves in its bundle",
		Long: `Verify reads rewritten documents and resolves each text.* and model.* binding
against the component bundle: <component>.json in --bundle-dir (default: next to
the document) or, failing that, the bundle embedded in the template.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args
			if len(sources) == 0 {
				sources = a.cfg.Sources
			}
			files, err := expandSources(sources)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range files {
				report, err := a.verifyFile(path, bundleDir)
				if err != nil {
					return err
				}
				if report == nil {
					continue
				}
				unresolved := make([]string, 0, len(report.Unresolved))
				for _, ref := range report.Unresolved {
					unresolved = append(unresolved, ref.String())
				}
				ui.Verify(a.out, path, report.References, unresolved, report.MissingBundles)
				if !report.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w in %d of %d files", ErrUnresolved, failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "Directory holding <component>.json bundles")
	return cmd
}

// verifyFile checks one document. Documents without component templates
// return a nil report.
func (a *app) verifyFile(path, bundleDir string) (*verify.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := markup.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	templates := component.Templates(doc)
	if len(templates) == 0 {
		a.logger.Debug("no component templates", "path", path)
		return nil, nil
	}

	if bundleDir == "" {
		bundleDir = filepath.Dir(path)
	}
	fallbackID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	bundles := make(map[string]*bundle.Bundle)
	for _, tmpl := range templates {
		id, _ := component.ID(tmpl)
		if id == "" {
			id = fallbackID
		}
		if _, ok := bundles[id]; ok {
			continue
		}
		b, err := loadBundle(filepath.Join(bundleDir, id+".json"), tmpl)
		if err != nil {
			a.logger.Warn("failed to load bundle", "path", path, "component", id, "error", err)
			continue
		}
		if b != nil {
			bundles[id] = b
		}
	}
	return verify.Check(doc, fallbackID, bundles), nil
}

// loadBundle reads the bundle file, falling back to the bundle embedded in
// tmpl. It returns nil when neither exists.
func loadBundle(path string, tmpl *markup.Node) (*bundle.Bundle, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return bundle.Decode(data)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	b, _, err := i18nprep.EmbeddedBundle(tmpl)
	return b, err
}
