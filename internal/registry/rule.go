package registry

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleKind tags the Rule union.
type RuleKind uint8

const (
	// Never marks an attribute as explicitly not localizable.
	Never RuleKind = iota
	// Always marks an attribute as localizable, optionally with a type tag.
	Always
	// Conditional selects a nested rule from the element's attributes.
	Conditional
)

// Rule is a localizability decision for one tag/attribute pair.
type Rule struct {
	Kind     RuleKind
	Type     string    // Always only; empty means plain
	Branches []*Branch // Conditional only, ordered
	Fallback *Rule     // Conditional only, the '' selector
}

// Branch is one selector guarded sub-rule.
type Branch struct {
	Selector Selector
	Rule     *Rule
}

// NeverRule returns a not-localizable rule.
func NeverRule() *Rule { return &Rule{Kind: Never} }

// AlwaysRule returns a localizable rule with an optional type tag.
func AlwaysRule(typ string) *Rule { return &Rule{Kind: Always, Type: typ} }

// Resolve evaluates the rule against el.
func (r *Rule) Resolve(el Element) (string, bool) {
	if r == nil {
		return "", false
	}
	switch r.Kind {
	case Always:
		return r.Type, true
	case Conditional:
		for _, b := range r.Branches {
			if b.Selector.Match(el) {
				return b.Rule.Resolve(el)
			}
		}
		return r.Fallback.Resolve(el)
	default:
		return "", false
	}
}

var selectorRe = regexp.MustCompile(`^(!)?([A-Za-z_][A-Za-z0-9_.:-]*)(?:=(.*))?$`)

// Selector tests an element attribute: "name", "!name", "name=value" or "!name=value".
type Selector struct {
	Text    string
	Name    string
	Negate  bool
	Value   string
	Valued  bool
	pattern *regexp.Regexp
}

// ParseSelector parses a single selector token.
func ParseSelector(text string) (Selector, error) {
	m := selectorRe.FindStringSubmatch(text)
	if m == nil {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
	}
	s := Selector{
		Text:   text,
		Negate: m[1] == "!",
		Name:   strings.ToLower(m[2]),
		Valued: strings.Contains(text, "="),
		Value:  m[3],
	}
	if s.Valued {
		p, err := regexp.Compile("^(?:" + s.Value + ")$")
		if err != nil {
			p = regexp.MustCompile("^" + regexp.QuoteMeta(s.Value) + "$")
		}
		s.pattern = p
	}
	return s, nil
}

func isSelector(token string) bool {
	return selectorRe.MatchString(token)
}

// Match reports whether el satisfies the selector.
func (s Selector) Match(el Element) bool {
	v, ok := el.Attribute(s.Name)
	matched := ok
	if s.Valued {
		matched = ok && s.pattern.MatchString(v)
	}
	if s.Negate {
		return !matched
	}
	return matched
}

// CompareSelectors is the default branch order: selector name, then full text.
func CompareSelectors(a, b Selector) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// ParseValue parses a rule template attribute value into its selectors and
// trailing type token.
func ParseValue(value string) ([]Selector, string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, "", nil
	}
	tokens := strings.Split(value, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	var typ string
	if last := tokens[len(tokens)-1]; !isSelector(last) {
		typ = last
		tokens = tokens[:len(tokens)-1]
	}
	selectors := make([]Selector, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		s, err := ParseSelector(tok)
		if err != nil {
			return nil, "", err
		}
		selectors = append(selectors, s)
	}
	return selectors, typ, nil
}

// merge inserts leaf beneath node along the (sorted) selector chain.
func merge(node *Rule, selectors []Selector, leaf *Rule, cmp func(a, b Selector) int) *Rule {
	if len(selectors) == 0 {
		if node != nil && node.Kind == Conditional {
			node.Fallback = leaf
			return node
		}
		return leaf
	}
	switch {
	case node == nil:
		node = &Rule{Kind: Conditional}
	case node.Kind != Conditional:
		node = &Rule{Kind: Conditional, Fallback: node}
	}
	head := selectors[0]
	for _, b := range node.Branches {
		if b.Selector.Text == head.Text {
			b.Rule = merge(b.Rule, selectors[1:], leaf, cmp)
			return node
		}
	}
	branch := &Branch{Selector: head, Rule: merge(nil, selectors[1:], leaf, cmp)}
	pos := len(node.Branches)
	for i, b := range node.Branches {
		if cmp(head, b.Selector) < 0 {
			pos = i
			break
		}
	}
	node.Branches = append(node.Branches, nil)
	copy(node.Branches[pos+1:], node.Branches[pos:])
	node.Branches[pos] = branch
	return node
}
