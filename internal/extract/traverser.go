package extract

import (
	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/markup"
)

const (
	langBinding = "{{effectiveLang}}"

	// EmbeddedBundleID marks the template holding a previously embedded bundle.
	EmbeddedBundleID = "localizable-text"
)

// traverse visits node and reports whether it counts as whitespace for
// sibling numbering.
func (w *walker) traverse(node *markup.Node, index int) bool {
	id := explicitID(node)
	defer w.path.enter(segment(node.Name(), id, index))()

	switch node.Kind {
	case markup.ElementNode:
		w.element(node, id)
	case markup.TextNode:
		return w.text(node)
	case markup.DocumentNode, markup.FragmentNode:
		w.children(node)
	default:
		return true
	}
	return false
}

func (w *walker) children(node *markup.Node) {
	whitespace := 0
	for i := 0; i < len(node.Children); i++ {
		if w.traverse(node.Children[i], i-whitespace) {
			whitespace++
		}
	}
}

func (w *walker) element(node *markup.Node, id string) {
	switch node.Tag {
	case "style", "script", "meta":
		return
	case "i18n-format":
		w.formatDirective(node, id)
		return
	case "i18n-number", "i18n-datetime":
		ensureLang(node)
	case "template":
		if id == EmbeddedBundleID {
			return
		}
	}
	w.attributes(node)
	w.content(node, id)
}

func ensureLang(el *markup.Node) {
	if !el.HasAttribute("lang") {
		el.SetAttribute("lang", langBinding)
	}
}

// content handles the children of a default element: a leaf text message,
// an inline-formatted collapse, or plain recursion.
func (w *walker) content(node *markup.Node, id string) {
	var textChild *markup.Node
	structured := false
	for _, c := range node.Children {
		switch c.Kind {
		case markup.TextNode:
			if textChild != nil {
				structured = true
			}
			textChild = c
		case markup.ElementNode, markup.FragmentNode:
			structured = true
		}
		if structured {
			break
		}
	}
	if !structured && textChild != nil && IsCompound(textChild.Data) {
		structured = true
	}

	if !structured {
		if textChild != nil {
			w.leafText(node, id, textChild)
		}
		return
	}

	if shapeOf(node).inline(node) {
		w.inlineFormat(node, id)
		return
	}
	w.children(node)
}

func (w *walker) leafText(node *markup.Node, id string, textChild *markup.Node) {
	text := textChild.Data
	if isBlank(text) || isSingleBinding(text) {
		return
	}
	messageID := w.messageID(id)
	text = normalize(text)
	if node.Tag == "json-data" {
		value, err := bundle.DecodeJSON([]byte(text))
		if err != nil {
			w.warn(&JSONValueError{Element: node.Tag, Value: text, Err: err})
			return
		}
		w.set(messageID, value)
	} else {
		w.set(messageID, text)
	}
	if w.rewrite {
		textChild.Data = "{{text." + messageID + "}}"
	}
}

func (w *walker) text(node *markup.Node) bool {
	text := node.Data
	if isBlank(text) {
		return true
	}
	if isSingleBinding(text) {
		return false
	}
	messageID := w.messageID("")
	if IsCompound(text) {
		m := w.collapse(messageID, itemsOf([]*markup.Node{node}))
		if w.rewrite && node.Parent != nil {
			node.Parent.ReplaceChild(node, m.directive())
		}
		return false
	}
	w.set(messageID, normalize(text))
	if w.rewrite {
		node.Data = "{{text." + messageID + "}}"
	}
	return false
}
