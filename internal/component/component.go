// Package component finds the localizable component templates of a document.
package component

import (
	"strings"

	"github.com/livefir/i18nprep/internal/markup"
)

// DefaultMarker is the import path fragment that opts a document in.
const DefaultMarker = "/i18n-behavior.html"

// DomBind is the is= value of a standalone localizable template.
const DomBind = "i18n-dom-bind"

var templateParents = map[string]bool{
	"dom-module": true,
	"body":       true,
	"head":       true,
	"html":       true,
}

// Eligible reports whether doc imports a resource whose href contains marker.
func Eligible(doc *markup.Node, marker string) bool {
	return markup.Query(doc, func(n *markup.Node) bool {
		return n.IsElement() && n.Tag == "link" &&
			n.AttributeValue("rel") == "import" &&
			strings.Contains(n.AttributeValue("href"), marker)
	}) != nil
}

// Templates returns the qualifying templates of doc in document order.
func Templates(doc *markup.Node) []*markup.Node {
	return markup.QueryAll(doc, func(n *markup.Node) bool {
		if !n.IsTemplate() {
			return false
		}
		if n.AttributeValue("is") == DomBind {
			return true
		}
		return n.Parent != nil && templateParents[n.Parent.TagName()]
	})
}

// ID returns the component id of tmpl and whether it came from the template itself.
func ID(tmpl *markup.Node) (string, bool) {
	if id := tmpl.AttributeValue("id"); id != "" {
		return id, true
	}
	if tmpl.Parent != nil {
		return tmpl.Parent.AttributeValue("id"), false
	}
	return "", false
}
