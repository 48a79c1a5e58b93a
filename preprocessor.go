package i18nprep

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/component"
	"github.com/livefir/i18nprep/internal/extract"
	"github.com/livefir/i18nprep/internal/logging"
	"github.com/livefir/i18nprep/internal/markup"
	"github.com/livefir/i18nprep/internal/metrics"
	"github.com/livefir/i18nprep/internal/registry"
)

// Component is the extraction result of one qualifying template.
type Component struct {
	ID       string
	Bundle   *bundle.Bundle
	Messages int
	Warnings int
}

// Result is what processing one file produced.
type Result struct {
	// Files are the outputs in emit order: the document, then one bundle
	// per component.
	Files []*File
	// Localizable reports whether the document was processed at all.
	Localizable bool
	// Components are the bundles in document order.
	Components []Component
}

// Preprocessor extracts localizable strings from component documents.
// Process is safe for concurrent use unless BuildRegistry is set.
type Preprocessor struct {
	opts      Options
	logger    *slog.Logger
	store     *registry.Store
	extractor *extract.Extractor
	metrics   *metrics.Collector

	loadOnce sync.Once
	loaded   int
}

// New creates a Preprocessor from DefaultOptions and opts.
func New(opts ...Option) (*Preprocessor, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithOptions(o)
}

// NewWithOptions creates a Preprocessor from a complete Options value.
func NewWithOptions(o Options) (*Preprocessor, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	store := o.SharedRegistry
	if store == nil {
		store = registry.NewStore(registry.WithPrecedence(o.Precedence))
	}
	logger := o.logger()
	return &Preprocessor{
		opts:   o,
		logger: logger,
		store:  store,
		extractor: extract.New(
			extract.WithRewrite(o.RewriteBindings),
			extract.WithResolver(store),
			extract.WithLogger(logger),
		),
		metrics: metrics.NewCollector(),
	}, nil
}

// Options returns the options p was created with.
func (p *Preprocessor) Options() Options {
	return p.opts
}

// Registry returns the attribute registry p reads and, in registry-build
// mode, writes.
func (p *Preprocessor) Registry() *registry.Store {
	return p.store
}

// Metrics returns the counters of every document p has processed.
func (p *Preprocessor) Metrics() metrics.Snapshot {
	return p.metrics.Snapshot()
}

// LoadRegistry loads the registry sources once and returns how many loaded.
func (p *Preprocessor) LoadRegistry(ctx context.Context) int {
	p.loadOnce.Do(func() {
		if len(p.opts.RegistrySourcePaths) > 0 {
			p.loaded = p.store.LoadSources(ctx, p.logger, p.opts.RegistrySourcePaths...)
		}
	})
	return p.loaded
}

// Process runs p over file.
func (p *Preprocessor) Process(file *File) (*Result, error) {
	return p.ProcessContext(context.Background(), file)
}

// ProcessContext runs p over file. Null and empty files and documents
// that do not opt in pass through unchanged.
func (p *Preprocessor) ProcessContext(ctx context.Context, file *File) (*Result, error) {
	defer p.metrics.Begin()()

	res, err := p.process(ctx, file)
	switch {
	case err != nil:
		p.metrics.DocumentFailed()
	case res.Localizable:
		p.metrics.DocumentProcessed()
	default:
		p.metrics.DocumentSkipped()
	}
	return res, err
}

func (p *Preprocessor) process(ctx context.Context, file *File) (*Result, error) {
	if file == nil || file.IsNull() {
		return &Result{Files: p.passThrough(file)}, nil
	}
	if file.IsStream() {
		return nil, newPluginError("Streaming not supported", ErrStreamingNotSupported)
	}
	if len(file.Contents) == 0 {
		return &Result{Files: p.passThrough(file)}, nil
	}

	ctx = logging.WithFile(ctx, file.Path)

	doc, err := markup.Parse(bytes.NewReader(file.Contents))
	if err != nil {
		return nil, newPluginError("failed to parse document", err)
	}

	if !p.opts.ForceProcessing && !component.Eligible(doc, p.opts.Marker) {
		p.logger.DebugContext(ctx, "document does not import the marker", "marker", p.opts.Marker)
		return &Result{Files: p.passThrough(file)}, nil
	}

	p.LoadRegistry(ctx)

	components := orderedmap.New[string, Component]()
	for _, tmpl := range component.Templates(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.opts.BuildRegistry {
			// Declarations need an element name; the file name is no substitute.
			name, _ := component.ID(tmpl)
			if err := p.store.RegisterTemplate(name, tmpl); err != nil {
				p.logger.WarnContext(ctx, "skipping inline declaration", "file", file.Path, "error", err)
				continue
			}
			p.metrics.TemplateRegistered()
			continue
		}

		id := p.componentID(file, tmpl)

		comp, err := p.extract(ctx, id, tmpl)
		if err != nil {
			return nil, err
		}
		components.Set(id, comp)
	}

	res := &Result{Localizable: true}
	for pair := components.Oldest(); pair != nil; pair = pair.Next() {
		res.Components = append(res.Components, pair.Value)
	}

	if p.opts.BuildRegistry {
		res.Files = p.passThrough(file)
		return res, nil
	}

	res.Files, err = p.outputs(file, doc, res.Components)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// componentID returns the template's component id, writing assetpath when
// the template carries its own id. Anonymous components are named after
// the file.
func (p *Preprocessor) componentID(file *File, tmpl *markup.Node) string {
	id, own := component.ID(tmpl)
	if own {
		tmpl.SetAttribute("assetpath", file.assetPath(p.opts.SourceRoot))
	}
	if id == "" {
		id = file.Basename()
	}
	return id
}

func (p *Preprocessor) extract(ctx context.Context, id string, tmpl *markup.Node) (Component, error) {
	ctx = logging.WithComponent(ctx, id)
	b, err := seedBundle(tmpl)
	if err != nil {
		p.logger.WarnContext(ctx, "ignoring embedded bundle", "error", err)
		p.metrics.Increment("invalid_embedded_bundle")
	}

	stats := p.extractor.Extract(ctx, tmpl, b)
	p.metrics.TemplateExtracted(stats.Messages, stats.Warnings)
	p.logger.DebugContext(ctx, "extracted component",
		"messages", stats.Messages, "warnings", stats.Warnings)

	if p.opts.EmbedBundles {
		if err := embedBundle(tmpl, b, p.opts.FormatWidth); err != nil {
			return Component{}, newPluginError("failed to embed bundle", err)
		}
	}
	return Component{ID: id, Bundle: b, Messages: stats.Messages, Warnings: stats.Warnings}, nil
}

func (p *Preprocessor) outputs(file *File, doc *markup.Node, components []Component) ([]*File, error) {
	var files []*File

	if !p.opts.SuppressDocumentOutput {
		var buf bytes.Buffer
		if err := markup.Render(&buf, doc); err != nil {
			return nil, newPluginError("failed to render document", err)
		}
		html := buf.Bytes()
		if p.opts.MinifyDocument {
			minified, err := minifyDocument(html)
			if err != nil {
				p.logger.Warn("minify failed, keeping document as rendered", "file", file.Path, "error", err)
			}
			html = minified
		}
		files = append(files, file.sibling(file.Basename()+".html", html))
	}

	if !p.opts.SuppressBundleOutput {
		for _, c := range components {
			data, err := c.Bundle.Format(p.opts.FormatWidth)
			if err != nil {
				return nil, newPluginError("failed to encode bundle "+c.ID, err)
			}
			files = append(files, file.sibling(c.ID+".json", data))
		}
	}
	return files, nil
}

func (p *Preprocessor) passThrough(file *File) []*File {
	if file == nil || p.opts.SuppressDocumentOutput {
		return nil
	}
	return []*File{file}
}
