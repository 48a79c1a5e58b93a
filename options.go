package i18nprep

import (
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/livefir/i18nprep/internal/component"
	"github.com/livefir/i18nprep/internal/logging"
	"github.com/livefir/i18nprep/internal/registry"
)

// Default option values.
const (
	DefaultFormatWidth = 2
	DefaultSourceRoot  = "app"
)

// Options configures a Preprocessor.
type Options struct {
	// RewriteBindings replaces extracted values with bindings into the bundle.
	RewriteBindings bool `yaml:"rewrite_bindings" toml:"rewrite_bindings"`
	// FormatWidth is the bundle JSON indent; 0 writes compact JSON.
	FormatWidth int `yaml:"format_width" toml:"format_width" validate:"gte=0,lte=16"`
	// SourceRoot is the source directory below Cwd used to compute assetpath.
	SourceRoot string `yaml:"source_root" toml:"source_root"`
	// ForceProcessing processes documents that do not import the marker.
	ForceProcessing bool `yaml:"force" toml:"force"`
	// SuppressDocumentOutput drops the rewritten document from the results.
	SuppressDocumentOutput bool `yaml:"suppress_document" toml:"suppress_document"`
	// SuppressBundleOutput drops the bundle files from the results.
	SuppressBundleOutput bool `yaml:"suppress_bundles" toml:"suppress_bundles"`
	// BuildRegistry registers inline attribute declarations instead of extracting.
	BuildRegistry bool `yaml:"build_registry" toml:"build_registry"`
	// RegistrySourcePaths are repository documents loaded before the first file.
	RegistrySourcePaths []string `yaml:"registry_sources" toml:"registry_sources"`
	// EmbedBundles writes each bundle back into its template.
	EmbedBundles bool `yaml:"embed_bundles" toml:"embed_bundles"`
	// MinifyDocument minifies the emitted document.
	MinifyDocument bool `yaml:"minify" toml:"minify"`
	// Marker is the import href fragment that opts a document in.
	Marker string `yaml:"marker" toml:"marker" validate:"required"`
	// Precedence is the registry lookup policy for a store created here.
	Precedence registry.Precedence `yaml:"-" toml:"-"`

	// SharedRegistry is read and written across Preprocessors when set.
	SharedRegistry *registry.Store `yaml:"-" toml:"-" validate:"-"`
	Logger         *slog.Logger    `yaml:"-" toml:"-" validate:"-"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		FormatWidth: DefaultFormatWidth,
		SourceRoot:  DefaultSourceRoot,
		Marker:      component.DefaultMarker,
		Precedence:  registry.TagFirst,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks o for invalid values.
func (o *Options) Validate() error {
	if err := getValidator().Struct(o); err != nil {
		if errs := ValidationToMultiError(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Option configures Options.
type Option func(*Options)

// WithRewriteBindings enables replacing extracted text with bindings.
func WithRewriteBindings(enabled bool) Option {
	return func(o *Options) {
		o.RewriteBindings = enabled
	}
}

// WithFormatWidth sets the bundle JSON indent width.
func WithFormatWidth(width int) Option {
	return func(o *Options) {
		o.FormatWidth = width
	}
}

// WithSourceRoot sets the source root used for assetpath.
func WithSourceRoot(root string) Option {
	return func(o *Options) {
		o.SourceRoot = root
	}
}

// WithForce processes documents regardless of the opt-in marker.
func WithForce() Option {
	return func(o *Options) {
		o.ForceProcessing = true
	}
}

// WithSuppressDocument drops the document from the outputs.
func WithSuppressDocument() Option {
	return func(o *Options) {
		o.SuppressDocumentOutput = true
	}
}

// WithSuppressBundles drops bundle files from the outputs.
func WithSuppressBundles() Option {
	return func(o *Options) {
		o.SuppressBundleOutput = true
	}
}

// WithBuildRegistry switches to registry-build mode.
func WithBuildRegistry() Option {
	return func(o *Options) {
		o.BuildRegistry = true
	}
}

// WithRegistrySources sets the repository documents to load.
func WithRegistrySources(paths ...string) Option {
	return func(o *Options) {
		o.RegistrySourcePaths = paths
	}
}

// WithSharedRegistry uses store instead of a private registry.
func WithSharedRegistry(store *registry.Store) Option {
	return func(o *Options) {
		o.SharedRegistry = store
	}
}

// WithEmbedBundles embeds each bundle into its template.
func WithEmbedBundles(enabled bool) Option {
	return func(o *Options) {
		o.EmbedBundles = enabled
	}
}

// WithMinify minifies emitted documents.
func WithMinify(enabled bool) Option {
	return func(o *Options) {
		o.MinifyDocument = enabled
	}
}

// WithMarker sets the opt-in import href fragment.
func WithMarker(marker string) Option {
	return func(o *Options) {
		o.Marker = marker
	}
}

// WithPrecedence sets the lookup policy of the private registry.
func WithPrecedence(p registry.Precedence) Option {
	return func(o *Options) {
		o.Precedence = p
	}
}

// WithLogger sets the logger for warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
