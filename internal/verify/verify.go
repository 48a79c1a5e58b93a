// Package verify checks that every bundle reference in a rewritten
// document resolves in its component bundle.
package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/component"
	"github.com/livefir/i18nprep/internal/extract"
	"github.com/livefir/i18nprep/internal/markup"
)

var (
	bindingRe   = regexp.MustCompile(`{{[^{}]*}}|\[\[[^\[\]]*\]\]`)
	referenceRe = regexp.MustCompile(`(?:^|[^\w.$])((?:text|model)(?:\.[\w:#$-]+)+)`)
)

// Reference is one bundle lookup found in a template.
type Reference struct {
	Component string
	// Key is the dotted bundle key, e.g. "text.card:span" or "model.input.placeholder".
	Key string
	// Location is the element and, for attributes, the attribute holding the binding.
	Location string
}

func (r Reference) String() string {
	return fmt.Sprintf("%s: %s at %s", r.Component, r.Key, r.Location)
}

// Report is the outcome of checking a document.
type Report struct {
	Components     int
	References     int
	Unresolved     []Reference
	MissingBundles []string
}

// OK reports whether every reference resolved.
func (r *Report) OK() bool {
	return len(r.Unresolved) == 0 && len(r.MissingBundles) == 0
}

// Check resolves the references of every component template in doc
// against bundles, keyed by component id. Anonymous components use
// fallbackID.
func Check(doc *markup.Node, fallbackID string, bundles map[string]*bundle.Bundle) *Report {
	report := &Report{}
	for _, tmpl := range component.Templates(doc) {
		id, _ := component.ID(tmpl)
		if id == "" {
			id = fallbackID
		}
		report.Components++

		refs := References(id, tmpl)
		report.References += len(refs)

		b, ok := bundles[id]
		if !ok {
			if len(refs) > 0 {
				report.MissingBundles = append(report.MissingBundles, id)
			}
			continue
		}
		data := b.Plain()
		for _, ref := range refs {
			if _, ok := Lookup(data, ref.Key); !ok {
				report.Unresolved = append(report.Unresolved, ref)
			}
		}
	}
	return report
}

// References lists the bundle references in the bindings of tmpl. The
// embedded bundle block is not searched.
func References(componentID string, tmpl *markup.Node) []Reference {
	var refs []Reference
	add := func(text, location string) {
		for _, binding := range bindingRe.FindAllString(text, -1) {
			for _, m := range referenceRe.FindAllStringSubmatch(binding, -1) {
				refs = append(refs, Reference{Component: componentID, Key: m[1], Location: location})
			}
		}
	}

	markup.Walk(tmpl, func(n *markup.Node) bool {
		switch {
		case n.IsTemplate() && n != tmpl && n.AttributeValue("id") == extract.EmbeddedBundleID:
			return false
		case n.IsElement():
			for _, a := range n.Attrs {
				add(a.Val, "<"+n.Tag+" "+a.Key+">")
			}
		case n.IsText() && n.Parent != nil:
			add(n.Data, "<"+n.Parent.Name()+">")
		}
		return true
	})
	return refs
}

// Path converts a dotted reference into a JSONPath over the bundle. The
// "text" root is the bundle itself and numeric segments index arrays.
func Path(key string) (jp.Expr, error) {
	segments := strings.Split(key, ".")
	x := jp.R()
	switch segments[0] {
	case "text":
	case "model":
		x = x.C(bundle.ModelKey)
	default:
		return nil, fmt.Errorf("verify: %q is not a bundle reference", key)
	}
	if len(segments) < 2 {
		return nil, fmt.Errorf("verify: %q names no message", key)
	}
	for _, seg := range segments[1:] {
		if i, err := strconv.Atoi(seg); err == nil {
			x = x.N(i)
			continue
		}
		x = x.C(seg)
	}
	return x, nil
}

// Lookup resolves a dotted reference in a plain bundle.
func Lookup(data map[string]any, key string) (any, bool) {
	x, err := Path(key)
	if err != nil {
		return nil, false
	}
	results := x.Get(data)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// Query evaluates a JSONPath expression against a bundle.
func Query(b *bundle.Bundle, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(b.Plain()), nil
}
