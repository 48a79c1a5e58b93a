package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/livefir/i18nprep"
	"github.com/livefir/i18nprep/cmd/i18nprep/internal/ui"
	"github.com/livefir/i18nprep/internal/catalog"
	"github.com/livefir/i18nprep/internal/logging"
	"github.com/livefir/i18nprep/internal/registry"
)

type processFlags struct {
	rewrite      bool
	embed        bool
	minify       bool
	force        bool
	formatWidth  int
	sourceRoot   string
	outDir       string
	registry     []string
	registryFile string
	precedence   string
	catalog      string
	concurrency  int
	dropHTML     bool
	noBundles    bool
	label        string
}

func (f *processFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.rewrite, "rewrite", false, "Replace extracted text with bindings into the bundle")
	flags.BoolVar(&f.embed, "embed", false, "Embed each bundle into its template")
	flags.BoolVar(&f.minify, "minify", false, "Minify the emitted documents")
	flags.BoolVar(&f.force, "force", false, "Process documents that do not import the i18n behavior")
	flags.IntVar(&f.formatWidth, "format-width", i18nprep.DefaultFormatWidth, "Bundle JSON indent; 0 writes compact JSON")
	flags.StringVar(&f.sourceRoot, "source-root", i18nprep.DefaultSourceRoot, "Source root below the working directory, used for assetpath")
	flags.StringVarP(&f.outDir, "out-dir", "o", "", "Output directory (default: next to each input)")
	flags.StringSliceVarP(&f.registry, "registry", "r", nil, "Attribute repository documents to load")
	flags.StringVar(&f.registryFile, "registry-file", "", "JSON or YAML registry to seed from")
	flags.StringVar(&f.precedence, "precedence", "tag", "Registry precedence: tag or wildcard")
	flags.StringVar(&f.catalog, "catalog", "", "SQLite catalog recording message keys per run")
	flags.IntVarP(&f.concurrency, "concurrency", "j", 0, "Files processed in parallel (default: GOMAXPROCS)")
	flags.BoolVar(&f.dropHTML, "drop-html", false, "Do not write the processed documents")
	flags.BoolVar(&f.noBundles, "no-bundles", false, "Do not write the bundle files")
	flags.StringVar(&f.label, "label", "", "Label for the catalog run")
}

// apply copies explicitly set flags over the loaded config.
func (f *processFlags) apply(cmd *cobra.Command, a *app) {
	cfg := a.cfg
	p := &cfg.Preprocess
	changed := cmd.Flags().Changed
	if changed("rewrite") {
		p.RewriteBindings = f.rewrite
	}
	if changed("embed") {
		p.EmbedBundles = f.embed
	}
	if changed("minify") {
		p.MinifyDocument = f.minify
	}
	if changed("force") {
		p.ForceProcessing = f.force
	}
	if changed("format-width") {
		p.FormatWidth = f.formatWidth
	}
	if changed("source-root") {
		p.SourceRoot = f.sourceRoot
	}
	if changed("registry") {
		p.RegistrySourcePaths = f.registry
	}
	if changed("drop-html") {
		p.SuppressDocumentOutput = f.dropHTML
	}
	if changed("no-bundles") {
		p.SuppressBundleOutput = f.noBundles
	}
	if changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if changed("registry-file") {
		cfg.RegistryFile = f.registryFile
	}
	if changed("precedence") {
		cfg.Precedence = f.precedence
	}
	if changed("catalog") {
		cfg.Catalog = f.catalog
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
}

func newProcessCommand(a *app) *cobra.Command {
	f := &processFlags{}
	cmd := &cobra.Command{
		Use:   "process [files or directories...]",
		Short: "Extract message bundles from component documents",
		Long: `Process parses each HTML document that imports i18n-behavior.html, extracts
the text of every component template into <component>.json and, with --rewrite,
replaces the text with bindings into that bundle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			_, err := a.process(cmd.Context(), args, f.label)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

// processed pairs an input with its result.
type processed struct {
	in  *i18nprep.File
	res *i18nprep.Result
}

func (a *app) process(ctx context.Context, args []string, label string) ([]processed, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sources := args
	if len(sources) == 0 {
		sources = a.cfg.Sources
	}
	files, err := expandSources(sources)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input documents")
	}

	store, err := a.loadStore()
	if err != nil {
		return nil, err
	}

	opts := a.cfg.Preprocess
	opts.SharedRegistry = store
	opts.Logger = a.logger
	p, err := i18nprep.NewWithOptions(opts)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	results := make([]processed, len(files))
	runContext := func(ctx context.Context, i int) error {
		in, err := readFile(cwd, files[i])
		if err != nil {
			return err
		}
		res, err := p.ProcessContext(logging.WithFile(ctx, in.Path), in)
		if err != nil {
			return fmt.Errorf("%s: %w", files[i], err)
		}
		results[i] = processed{in: in, res: res}
		return nil
	}

	if opts.BuildRegistry {
		// Registry building writes the shared store.
		for i := range files {
			if err := runContext(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		limit := a.cfg.Concurrency
		if limit <= 0 {
			limit = runtime.GOMAXPROCS(0)
		}
		g.SetLimit(limit)
		for i := range files {
			g.Go(func() error { return runContext(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	m := p.Metrics()
	a.logger.Debug("run metrics",
		"documents", m.Documents, "skipped", m.Skipped, "templates", m.Templates,
		"registrations", m.Registrations, "messages", m.Messages, "warnings", m.Warnings,
		"max_in_flight", m.MaxInFlight, "busy", m.Busy)

	if opts.BuildRegistry {
		return results, a.saveStore(store)
	}

	written := 0
	for _, r := range results {
		n, err := writeOutputs(cwd, a.cfg.OutDir, r)
		if err != nil {
			return nil, err
		}
		written += n
	}

	if a.cfg.Catalog != "" {
		if err := a.record(ctx, label, results); err != nil {
			return nil, err
		}
	}

	ui.Summary(a.out, summaryRows(cwd, results), written)
	return results, nil
}

func (a *app) loadStore() (*registry.Store, error) {
	store := registry.NewStore(registry.WithPrecedence(a.cfg.RegistryPrecedence()))
	if a.cfg.RegistryFile == "" {
		return store, nil
	}
	if _, err := os.Stat(a.cfg.RegistryFile); os.IsNotExist(err) {
		a.logger.Debug("registry file not found, starting empty", "path", a.cfg.RegistryFile)
		return store, nil
	}
	if err := store.ReadFile(a.cfg.RegistryFile); err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return store, nil
}

func (a *app) saveStore(store *registry.Store) error {
	if a.cfg.RegistryFile == "" {
		data, err := store.MarshalJSON()
		if err != nil {
			return err
		}
		a.printf("%s\n", data)
		return nil
	}
	if err := store.WriteFile(a.cfg.RegistryFile); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	a.printf("Registry with %d elements written to %s\n", store.Len(), a.cfg.RegistryFile)
	return nil
}

func (a *app) record(ctx context.Context, label string, results []processed) error {
	cat, err := catalog.Open(ctx, a.cfg.Catalog, a.logger)
	if err != nil {
		return err
	}
	defer cat.Close()

	var entries []catalog.Entry
	for _, r := range results {
		for _, c := range r.res.Components {
			entries = append(entries, catalog.Entry{Component: c.ID, Bundle: c.Bundle})
		}
	}
	id, err := cat.Record(ctx, label, entries)
	if err != nil {
		return err
	}
	a.logger.Info("recorded catalog run", "run", id, "components", len(entries))
	return nil
}

// expandSources resolves files, directories (walked for *.html) and glob
// patterns into a sorted, de-duplicated list.
func expandSources(sources []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, src := range sources {
		info, err := os.Stat(src)
		switch {
		case err == nil && info.IsDir():
			err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".html") {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", src, err)
			}
		case err == nil:
			add(src)
		default:
			matches, globErr := filepath.Glob(src)
			if globErr != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", src, globErr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no such file: %s", src)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func readFile(cwd, path string) (*i18nprep.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &i18nprep.File{
		Path:     abs,
		Base:     filepath.Dir(abs),
		Cwd:      cwd,
		Contents: data,
	}, nil
}

// writeOutputs writes the result files of r. Pass-through inputs are only
// copied when an output directory is set.
func writeOutputs(cwd, outDir string, r processed) (int, error) {
	written := 0
	for _, f := range r.res.Files {
		if f == r.in && outDir == "" {
			continue
		}
		path := f.Path
		if outDir != "" {
			rel, err := filepath.Rel(cwd, f.Path)
			if err != nil || strings.HasPrefix(rel, "..") {
				rel = filepath.Base(f.Path)
			}
			path = filepath.Join(outDir, rel)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, f.Contents, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func summaryRows(cwd string, results []processed) []ui.FileRow {
	rows := make([]ui.FileRow, 0, len(results))
	for _, r := range results {
		path := r.in.Path
		if rel, err := filepath.Rel(cwd, path); err == nil {
			path = rel
		}
		row := ui.FileRow{Path: path, Skipped: !r.res.Localizable, Components: len(r.res.Components)}
		for _, c := range r.res.Components {
			row.Messages += c.Messages
			row.Warnings += c.Warnings
		}
		rows = append(rows, row)
	}
	return rows
}
