package i18nprep

import (
	"fmt"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/extract"
	"github.com/livefir/i18nprep/internal/markup"
)

const (
	embeddedAttr  = "localizable-text"
	embeddedValue = "embedded"
	jsonDataTag   = "json-data"
)

// embeddedBlock returns the <template id="localizable-text"> child of tmpl.
func embeddedBlock(tmpl *markup.Node) *markup.Node {
	for _, c := range tmpl.Content().Children {
		if c.IsTemplate() && c.AttributeValue("id") == extract.EmbeddedBundleID {
			return c
		}
	}
	return nil
}

// EmbeddedBundle decodes the bundle embedded in tmpl by an earlier run and
// reports whether tmpl carries one.
func EmbeddedBundle(tmpl *markup.Node) (*bundle.Bundle, bool, error) {
	block := embeddedBlock(tmpl)
	if block == nil {
		return nil, false, nil
	}
	data := markup.Query(block.Content(), markup.HasTagName(jsonDataTag))
	if data == nil {
		return nil, false, nil
	}
	b, err := bundle.Decode([]byte(data.TextContent()))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read embedded bundle: %w", err)
	}
	return b, true, nil
}

// seedBundle returns the embedded bundle of tmpl, or a fresh bundle when
// there is none or it cannot be read.
func seedBundle(tmpl *markup.Node) (*bundle.Bundle, error) {
	b, ok, err := EmbeddedBundle(tmpl)
	if !ok || err != nil {
		return bundle.New(), err
	}
	return b, nil
}

// embedBundle replaces any embedded block in tmpl with one holding b.
func embedBundle(tmpl *markup.Node, b *bundle.Bundle, width int) error {
	encoded, err := b.Format(width)
	if err != nil {
		return fmt.Errorf("failed to encode embedded bundle: %w", err)
	}

	content := tmpl.Content()
	if old := embeddedBlock(tmpl); old != nil {
		if next := nextSibling(old); next.IsText() && next.Data == "\n" {
			content.RemoveChild(next)
		}
		content.RemoveChild(old)
	}

	tmpl.SetAttribute(embeddedAttr, embeddedValue)

	data := markup.NewElement(jsonDataTag)
	data.SetTextContent("\n" + string(encoded) + "\n")

	block := markup.NewElement("template")
	block.SetAttribute("id", extract.EmbeddedBundleID)
	inner := block.Content()
	inner.AppendChild(markup.NewText("\n"))
	inner.AppendChild(data)
	inner.AppendChild(markup.NewText("\n"))

	content.AppendChild(block)
	content.AppendChild(markup.NewText("\n"))
	return nil
}

func nextSibling(n *markup.Node) *markup.Node {
	if n.Parent == nil {
		return nil
	}
	siblings := n.Parent.Children
	for i, c := range siblings {
		if c == n && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}
