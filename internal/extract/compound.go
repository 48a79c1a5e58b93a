package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/livefir/i18nprep/internal/markup"
)

const bindingPattern = `{{[^{}]*}}|\[\[[^\[\]]*\]\]`

// space matches the whitespace set of template binding syntax, which is
// wider than RE2's \s.
const space = `[\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

var (
	bindingRe       = regexp.MustCompile(bindingPattern)
	singleBindingRe = regexp.MustCompile(`^(?:` + bindingPattern + `)$`)
	tokenRe         = regexp.MustCompile(bindingPattern + `|[^{}\[\]]+|[{}\[\]]+`)

	wrappedBindingRe = regexp.MustCompile(`^(?:{{.*}}|\[\[.*\]\])$`)
	paddedBindingRe  = regexp.MustCompile(`^` + space + `*(?:{{.*}}|\[\[.*\]\])` + space + `*$`)
	callRe           = regexp.MustCompile(`\(.*\)`)

	blankRe    = regexp.MustCompile(`^` + space + `*$`)
	leadingRe  = regexp.MustCompile(`^` + space + `+`)
	trailingRe = regexp.MustCompile(space + `+$`)
)

// Token is one run of a compound text: a literal or a binding expression.
type Token struct {
	Text    string
	Binding bool
}

// Tokenize splits text into alternating literal and binding tokens.
// Adjacent literal runs are merged and empty literals dropped.
func Tokenize(text string) []Token {
	var tokens []Token
	for _, run := range tokenRe.FindAllString(text, -1) {
		if singleBindingRe.MatchString(run) {
			tokens = append(tokens, Token{Text: run, Binding: true})
			continue
		}
		if n := len(tokens); n > 0 && !tokens[n-1].Binding {
			tokens[n-1].Text += run
			continue
		}
		tokens = append(tokens, Token{Text: run})
	}
	return tokens
}

// SplitNodes materializes tokens as nodes: bindings become <span> elements
// holding the expression, literals become text nodes.
func SplitNodes(text string) []*markup.Node {
	tokens := Tokenize(text)
	nodes := make([]*markup.Node, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Binding {
			span := markup.NewElement("span")
			span.AppendChild(markup.NewText(tok.Text))
			nodes = append(nodes, span)
			continue
		}
		nodes = append(nodes, markup.NewText(tok.Text))
	}
	return nodes
}

// HasBinding reports whether text embeds at least one binding expression.
func HasBinding(text string) bool {
	return bindingRe.MatchString(text)
}

// IsCompound reports whether text mixes bindings with other content.
func IsCompound(text string) bool {
	return HasBinding(text) && !isSingleBinding(text)
}

func isSingleBinding(text string) bool {
	return singleBindingRe.MatchString(trimSpace(text))
}

func isBlank(text string) bool {
	return blankRe.MatchString(text)
}

// normalize collapses a leading and a trailing whitespace run to one space.
func normalize(text string) string {
	text = leadingRe.ReplaceAllLiteralString(text, " ")
	return trailingRe.ReplaceAllLiteralString(text, " ")
}

func trimSpace(text string) string {
	return strings.TrimFunc(text, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func hasLiteral(tokens []Token) bool {
	for _, t := range tokens {
		if !t.Binding && t.Text != "" {
			return true
		}
	}
	return false
}

// bindingExpr strips the delimiters from a binding token.
func bindingExpr(binding string) string {
	return binding[2 : len(binding)-2]
}
