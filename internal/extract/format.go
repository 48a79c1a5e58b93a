package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/markup"
)

var (
	mustacheRe  = regexp.MustCompile(`^({{)(.*)(}})$`)
	bracketRe   = regexp.MustCompile(`^(\[\[)(.*)(\]\])$`)
	serializeRe = regexp.MustCompile(`^serialize\(.*\)$`)
)

// splitBinding splits a whole-value binding into its delimiters and expression.
func splitBinding(value string) (lead, expr, tail string, ok bool) {
	m := mustacheRe.FindStringSubmatch(value)
	if m == nil {
		m = bracketRe.FindStringSubmatch(value)
	}
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// shape aggregates the child flags that decide inline formatting.
type shape struct {
	text          bool // non-blank text run
	compoundText  bool // text run mixing literals and bindings
	textChild     bool // element child with at most one text child
	compoundChild bool // such an element whose text is compound
	deeper        bool // structure below the first level
}

func (s *shape) merge(o shape) {
	s.text = s.text || o.text
	s.compoundText = s.compoundText || o.compoundText
	s.textChild = s.textChild || o.textChild
	s.compoundChild = s.compoundChild || o.compoundChild
	s.deeper = s.deeper || o.deeper
}

func (s shape) inline(node *markup.Node) bool {
	return (s.text || node.AttributeValue("text-id") != "") &&
		(s.textChild || s.compoundText) &&
		!s.deeper && !s.compoundChild
}

func shapeOf(node *markup.Node) shape {
	var s shape
	for _, c := range node.Children {
		s.merge(childShape(c))
	}
	return s
}

func childShape(child *markup.Node) shape {
	if !child.IsTemplate() {
		return shape{
			text:          child.IsText() && !isBlank(child.Data),
			compoundText:  child.IsText() && IsCompound(child.Data),
			textChild:     simpleElement(child),
			compoundChild: simpleElement(child) && IsCompound(child.TextContent()),
			deeper:        child.IsElement() && hasNonText(child),
		}
	}
	significant := significantChildren(child.Content())
	var first *markup.Node
	if len(significant) > 0 {
		first = significant[0]
	}
	alone := len(significant) <= 1
	firstCompound := first.IsText() && IsCompound(first.Data)
	return shape{
		text:          alone && first.IsText() && !isBlank(first.Data),
		compoundText:  firstCompound,
		textChild:     alone && simpleElement(first),
		compoundChild: simpleElement(first) && IsCompound(first.TextContent()),
		deeper:        !alone || (first.IsElement() && hasNonText(first)) || firstCompound,
	}
}

// simpleElement matches elements with no children or a single text child.
func simpleElement(n *markup.Node) bool {
	if !n.IsElement() {
		return false
	}
	return len(n.Children) == 0 || (len(n.Children) == 1 && n.Children[0].IsText())
}

func hasNonText(n *markup.Node) bool {
	for _, c := range n.Children {
		if !c.IsText() {
			return true
		}
	}
	return false
}

// significantChildren drops comments and blank text runs.
func significantChildren(n *markup.Node) []*markup.Node {
	var out []*markup.Node
	for _, c := range n.Children {
		if c.IsComment() || (c.IsText() && isBlank(c.Data)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// item is one piece of an inline-formatted message.
type item struct {
	node     *markup.Node // nil for an empty template
	template *markup.Node // wrapping template, if any
	hasText  bool
}

func itemsOf(children []*markup.Node) []item {
	var items []item
	for _, c := range children {
		switch {
		case c.IsText() && HasBinding(c.Data):
			for _, part := range SplitNodes(c.Data) {
				items = append(items, item{node: part, hasText: part.IsElement()})
			}
		case c.IsTemplate():
			var first *markup.Node
			if sig := significantChildren(c.Content()); len(sig) > 0 {
				first = sig[0]
			}
			items = append(items, item{node: first, template: c, hasText: true})
		default:
			items = append(items, item{node: c, hasText: c.IsElement() && len(c.Children) > 0})
		}
	}
	return items
}

// message accumulates a "{n}" format string and its parameters.
type message struct {
	id     string
	format strings.Builder
	values []any
	params []*markup.Node
	n      int
}

func (m *message) next() int {
	m.n++
	m.format.WriteString("{" + strconv.Itoa(m.n) + "}")
	return m.n
}

func (m *message) binding(n int) string {
	return "{{text." + m.id + "." + strconv.Itoa(n) + "}}"
}

// directive builds <i18n-format> around the collected parameters.
func (m *message) directive() *markup.Node {
	f := markup.NewElement("i18n-format")
	f.SetAttribute("lang", langBinding)
	span := markup.NewElement("span")
	span.AppendChild(markup.NewText(m.binding(0)))
	f.AppendChild(span)
	for _, p := range m.params {
		f.AppendChild(p)
	}
	return f
}

// collapse turns items into one parameterized message stored under id.
func (w *walker) collapse(id string, items []item) *message {
	m := &message{id: id, values: []any{""}}
	for _, it := range items {
		switch {
		case it.template == nil && it.node.IsText():
			m.format.WriteString(it.node.Data)
		case it.node.IsElement():
			w.elementParam(m, it)
		case it.template != nil:
			w.templateParam(m, it)
		}
	}
	m.values[0] = normalize(m.format.String())
	w.set(id, m.values)
	return m
}

func (w *walker) elementParam(m *message, it item) {
	el := it.node
	n := m.next()
	exit := w.path.enter(strconv.Itoa(n))
	w.attributes(el)
	exit()

	placeholder := "<" + el.Tag + ">"
	if it.hasText {
		m.values = append(m.values, w.paramText(m, el, placeholder, n))
	} else {
		m.values = append(m.values, placeholder)
	}
	el.SetAttribute("param", strconv.Itoa(n))
	if it.template != nil {
		m.params = append(m.params, it.template)
	} else {
		m.params = append(m.params, el)
	}
}

func (w *walker) templateParam(m *message, it item) {
	n := m.next()
	var value any = "<template>"
	if it.node != nil {
		value = w.paramText(m, it.node, "<template>", n)
	}
	m.values = append(m.values, value)
	if w.rewrite {
		span := markup.NewElement("span")
		span.SetAttribute("param", strconv.Itoa(n))
		if it.node != nil {
			span.AppendChild(it.node)
		}
		it.template.Content().AppendChild(span)
	}
	m.params = append(m.params, it.template)
}

// paramText extracts the text of a parameter node.
func (w *walker) paramText(m *message, target *markup.Node, placeholder string, n int) any {
	content := target.TextContent()
	switch {
	case content == "":
		if w.rewrite {
			target.SetTextContent("")
		}
		return placeholder
	case isBlank(content):
		if w.rewrite {
			target.SetTextContent(" ")
		}
		return placeholder
	case paddedBindingRe.MatchString(content):
		return content
	default:
		if w.rewrite {
			target.SetTextContent(m.binding(n))
		}
		return normalize(content)
	}
}

func (w *walker) inlineFormat(node *markup.Node, id string) {
	children := append([]*markup.Node(nil), node.Children...)
	m := w.collapse(w.messageID(id), itemsOf(children))
	if !w.rewrite {
		return
	}
	directive := m.directive()
	node.RemoveChildren()
	node.AppendChild(directive)
}

// formatDirective handles an authored <i18n-format>: the first element child
// is the format template, the rest are parameters.
func (w *walker) formatDirective(node *markup.Node, id string) {
	w.attributes(node)
	messageID := w.messageID(id)
	ensureLang(node)

	var elems []*markup.Node
	for _, c := range node.Children {
		if c.IsElement() {
			elems = append(elems, c)
		}
	}
	if len(elems) == 0 || boundTemplate(elems[0]) {
		return
	}

	values := make([]any, 0, len(elems))
	for n, param := range elems {
		value := param.TextContent()
		lead, expr, tail, bound := splitBinding(value)
		if n == 0 {
			values = append(values, w.formatTemplate(param, messageID, value))
			continue
		}
		if !param.HasAttribute("param") {
			param.SetAttribute("param", strconv.Itoa(n))
		}
		binding := "{{text." + messageID + "." + strconv.Itoa(n) + "}}"
		switch {
		case param.Tag == "i18n-number":
			ensureLang(param)
			if bound {
				if offset := param.AttributeValue("offset"); offset != "" {
					value = lead + expr + " - " + offset + tail
				}
			} else if w.rewrite {
				param.SetTextContent(binding)
			}
		case !bound && w.rewrite:
			param.SetTextContent(binding)
		}
		values = append(values, value)
	}
	w.set(messageID, values)
}

func (w *walker) formatTemplate(tmpl *markup.Node, messageID, value string) any {
	if tmpl.Tag != "json-data" {
		if w.rewrite {
			tmpl.SetTextContent("{{text." + messageID + ".0}}")
		}
		return value
	}
	if lead, expr, tail, ok := splitBinding(value); ok {
		if w.rewrite && !serializeRe.MatchString(expr) {
			tmpl.SetTextContent(lead + "serialize(" + expr + ")" + tail)
		}
		return value
	}
	parsed, err := bundle.DecodeJSON([]byte(value))
	if err != nil {
		w.warn(&JSONValueError{Element: tmpl.Tag, Value: value, Err: err})
		return value
	}
	if w.rewrite {
		tmpl.SetTextContent("{{serialize(text." + messageID + ".0)}}")
	}
	return parsed
}

// boundTemplate reports whether a format template was already rewritten.
func boundTemplate(tmpl *markup.Node) bool {
	_, expr, _, ok := splitBinding(tmpl.TextContent())
	if !ok {
		return false
	}
	return tmpl.Tag != "json-data" || serializeRe.MatchString(expr)
}
