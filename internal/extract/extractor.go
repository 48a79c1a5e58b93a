// Package extract walks component templates, collects their localizable
// strings into a bundle and optionally rewrites them into bindings.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/markup"
	"github.com/livefir/i18nprep/internal/registry"
)

// Resolver decides whether an element attribute is localizable.
type Resolver interface {
	Resolve(el registry.Element, attr string) (string, bool)
}

// JSONValueError reports a value that looked like JSON but did not parse.
type JSONValueError struct {
	Element   string
	Attribute string
	Value     string
	Err       error
}

func (e *JSONValueError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("invalid JSON in <%s>: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("invalid JSON at <%s %s>: %v", e.Element, e.Attribute, e.Err)
}

func (e *JSONValueError) Unwrap() error {
	return e.Err
}

// Stats counts what one Extract call did.
type Stats struct {
	Messages int
	Warnings int
}

// Extractor runs template traversals. It holds no per-template state and is
// safe for concurrent use when its Resolver is.
type Extractor struct {
	rewrite  bool
	resolver Resolver
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRewrite enables replacing extracted values with bindings.
func WithRewrite(rewrite bool) Option {
	return func(e *Extractor) {
		e.rewrite = rewrite
	}
}

// WithResolver sets the attribute localizability source.
func WithResolver(r Resolver) Option {
	return func(e *Extractor) {
		e.resolver = r
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor. Without a resolver no attribute is localizable.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract traverses root, writing messages into b.
func (e *Extractor) Extract(ctx context.Context, root *markup.Node, b *bundle.Bundle) Stats {
	w := &walker{Extractor: e, ctx: ctx, bundle: b}
	w.traverse(root, 0)
	return w.stats
}

type walker struct {
	*Extractor
	ctx    context.Context
	bundle *bundle.Bundle
	path   Path
	stats  Stats
}

func (w *walker) messageID(explicitID string) string {
	return GenerateMessageID(w.path, explicitID)
}

func (w *walker) set(key string, value any) {
	w.bundle.Set(key, value)
	w.stats.Messages++
}

func (w *walker) warn(err error) {
	w.stats.Warnings++
	w.logger.WarnContext(w.ctx, "leaving value untouched", "path", GenerateMessageID(w.path, ""), "error", err)
}

func (w *walker) resolve(el *markup.Node, attr string) (string, bool) {
	if w.resolver == nil {
		return "", false
	}
	return w.resolver.Resolve(el, attr)
}
