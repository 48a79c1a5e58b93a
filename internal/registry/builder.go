package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/livefir/i18nprep/internal/markup"
)

// RepositoryID is the id of the dom-module holding rule templates.
const RepositoryID = "i18n-attr-repo"

// Attributes of an inline declaration template that never become rules.
var inlineReserved = map[string]bool{
	"id":               true,
	"is":               true,
	"lang":             true,
	"localizable-text": true,
	"assetpath":        true,
	"text-attr":        true,
}

// declaration is one attribute of an element in the repository container.
type declaration struct {
	tag, attr, value string
}

// LoadDocument registers every element declared in the repository
// container of doc. A document with any malformed declaration registers
// nothing.
func (s *Store) LoadDocument(doc *markup.Node) error {
	container := markup.Query(doc, markup.And(
		markup.HasTagName("dom-module"),
		markup.HasAttributeValue("id", RepositoryID),
	))
	if container == nil {
		return ErrContainerNotFound
	}
	var (
		tags  []string
		decls []declaration
	)
	for _, tmpl := range markup.QueryAll(container, markup.HasTagName("template")) {
		t, d, err := collectTemplate(tmpl.Content())
		if err != nil {
			return err
		}
		tags = append(tags, t...)
		decls = append(decls, d...)
	}

	for _, tag := range tags {
		s.Declare(tag)
	}
	for _, d := range decls {
		if err := s.Add(d.tag, d.attr, d.value); err != nil {
			return fmt.Errorf("<%s %s>: %w", d.tag, d.attr, err)
		}
	}
	return nil
}

// collectTemplate gathers the declarations of content, checking every value
// before anything is registered.
func collectTemplate(content *markup.Node) ([]string, []declaration, error) {
	var (
		tags  []string
		decls []declaration
		err   error
	)
	for _, child := range content.Children {
		markup.Walk(child, func(n *markup.Node) bool {
			if err != nil {
				return false
			}
			if !n.IsElement() || n.IsTemplate() {
				return true
			}
			tags = append(tags, n.Tag)
			for _, a := range n.Attrs {
				if a.Key == "" {
					continue
				}
				if _, _, parseErr := ParseValue(a.Val); parseErr != nil {
					err = fmt.Errorf("<%s %s>: %w", n.Tag, a.Key, parseErr)
					return false
				}
				decls = append(decls, declaration{tag: n.Tag, attr: a.Key, value: a.Val})
			}
			return true
		})
	}
	return tags, decls, err
}

// LoadFile parses a repository document and registers its declarations.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := markup.Parse(f)
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}

// LoadSources loads every readable repository document. Failing sources are
// logged at debug level and skipped. It returns how many loaded.
func (s *Store) LoadSources(ctx context.Context, logger *slog.Logger, paths ...string) int {
	loaded := 0
	for _, p := range paths {
		if err := s.LoadFile(p); err != nil {
			logger.DebugContext(ctx, "skipping registry source", "path", p, "error", err)
			continue
		}
		loaded++
	}
	return loaded
}

// RegisterTemplate records an inline declaration:
// <template id="x-el" text-attr="label title" placeholder="!readonly">.
// element falls back to the template id. Nothing is registered unless the
// template carries text-attr.
func (s *Store) RegisterTemplate(element string, tmpl *markup.Node) error {
	if element == "" {
		element = tmpl.AttributeValue("id")
	}
	if element == "" {
		return ErrMissingElementName
	}
	textAttr, ok := tmpl.Attribute("text-attr")
	if !ok {
		return nil
	}
	for _, attr := range strings.Fields(textAttr) {
		s.Set(element, attr, AlwaysRule(""))
	}
	for _, a := range tmpl.Attrs {
		if inlineReserved[a.Key] {
			continue
		}
		if err := s.Add(element, a.Key, a.Val); err != nil {
			return fmt.Errorf("template %s attribute %s: %w", element, a.Key, err)
		}
	}
	return nil
}
