package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/markup"
	"github.com/livefir/i18nprep/internal/registry"
)

// excludedAttributes are never localized.
var excludedAttributes = map[string]bool{
	"id":               true,
	"text-id":          true,
	"is":               true,
	"lang":             true,
	"class":            true,
	"href":             true,
	"src":              true,
	"style":            true,
	"url":              true,
	"value":            true,
	"selected":         true,
	"assetpath":        true,
	"param":            true,
	"localizable-text": true,
}

var (
	jsonObjectRe = regexp.MustCompile(`^{.*}$`)
	jsonArrayRe  = regexp.MustCompile(`^\[.*\]$`)
	leadBinding  = regexp.MustCompile(`^(?:` + bindingPattern + `)`)
	trailBinding = regexp.MustCompile(`(?:` + bindingPattern + `)$`)
	newlines     = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// explicitID returns the text-id or id of n.
func explicitID(n *markup.Node) string {
	if id := n.AttributeValue("text-id"); id != "" {
		return id
	}
	return n.AttributeValue("id")
}

func modelKey(messageID, attr string) string {
	return "model." + messageID + "." + attr
}

// attributes extracts every localizable attribute of el.
func (w *walker) attributes(el *markup.Node) {
	id := explicitID(el)
	for i := range el.Attrs {
		attr := &el.Attrs[i]
		if attr.Namespace != "" || excludedAttributes[attr.Key] {
			continue
		}
		typ, ok := w.resolve(el, attr.Key)
		if !ok {
			continue
		}
		w.attribute(el, attr, id, typ)
	}
}

func (w *walker) attribute(el *markup.Node, attr *markup.Attribute, id, typ string) {
	text := attr.Val
	folded := newlines.Replace(text)
	switch {
	case text == "":
	case wrappedBindingRe.MatchString(text):
	case looksLikeJSON(text, folded):
		value, err := bundle.DecodeJSON([]byte(folded))
		if err != nil {
			w.warn(&JSONValueError{Element: el.Tag, Attribute: attr.Key, Value: text, Err: err})
			return
		}
		key := modelKey(w.messageID(id), attr.Key)
		w.set(key, value)
		w.bind(attr, typ, "{{"+key+"}}")
	case HasBinding(text):
		w.compoundAttribute(attr, id, typ)
	default:
		key := modelKey(w.messageID(id), attr.Key)
		w.set(key, text)
		w.bind(attr, typ, "{{"+key+"}}")
	}
}

func looksLikeJSON(text, folded string) bool {
	if !jsonObjectRe.MatchString(folded) && !jsonArrayRe.MatchString(folded) {
		return false
	}
	return !leadBinding.MatchString(text) && !trailBinding.MatchString(text)
}

func (w *walker) compoundAttribute(attr *markup.Attribute, id, typ string) {
	tokens := Tokenize(attr.Val)
	if !hasLiteral(tokens) {
		return
	}
	key := modelKey(w.messageID(id), attr.Key)

	if hasCall(tokens) {
		values := make([]any, 0, len(tokens))
		var rewritten strings.Builder
		for i, tok := range tokens {
			values = append(values, tok.Text)
			if tok.Binding {
				rewritten.WriteString(tok.Text)
				continue
			}
			rewritten.WriteString("{{" + key + "." + strconv.Itoa(i) + "}}")
		}
		w.set(key, values)
		w.bind(attr, typ, rewritten.String())
		return
	}

	var format strings.Builder
	values := []any{""}
	exprs := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Binding {
			format.WriteString(tok.Text)
			continue
		}
		values = append(values, tok.Text)
		exprs = append(exprs, bindingExpr(tok.Text))
		format.WriteString("{" + strconv.Itoa(len(exprs)) + "}")
	}
	values[0] = format.String()
	w.set(key, values)
	w.bind(attr, typ, "{{i18nFormat("+key+".0, "+strings.Join(exprs, ", ")+")}}")
}

func hasCall(tokens []Token) bool {
	for _, t := range tokens {
		if t.Binding && callRe.MatchString(t.Text) {
			return true
		}
	}
	return false
}

// bind rewrites the attribute value when rewriting is enabled.
func (w *walker) bind(attr *markup.Attribute, typ, value string) {
	if !w.rewrite {
		return
	}
	attr.Val = value
	if typ == registry.BindingType && !strings.HasSuffix(attr.Key, registry.BindingType) {
		attr.Key += registry.BindingType
	}
}
