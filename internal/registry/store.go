// Package registry decides which element attributes carry localizable text.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Wildcard names.
const (
	AnyElements   = "any-elements"
	AnyAttributes = "any-attributes"
)

// BindingType marks attributes rewritten as two-way bindings with a trailing "$".
const BindingType = "$"

var (
	ErrInvalidSelector    = errors.New("registry: invalid selector")
	ErrInvalidRule        = errors.New("registry: invalid rule")
	ErrContainerNotFound  = errors.New("registry: repository container not found")
	ErrMissingElementName = errors.New("registry: template has no element name")
)

// Element is the view of a markup element the registry queries.
type Element interface {
	TagName() string
	Attribute(name string) (string, bool)
}

// Precedence decides which of the candidate rules is consulted first.
type Precedence uint8

const (
	// TagFirst consults tag.attr, tag.any-attributes, then any-elements.attr.
	TagFirst Precedence = iota
	// WildcardFirst consults any-elements.attr before the tag rules.
	WildcardFirst
)

// ParsePrecedence maps "tag" and "wildcard" to a Precedence.
func ParsePrecedence(s string) (Precedence, error) {
	switch strings.ToLower(s) {
	case "", "tag":
		return TagFirst, nil
	case "wildcard":
		return WildcardFirst, nil
	default:
		return TagFirst, fmt.Errorf("registry: unknown precedence %q", s)
	}
}

// Store maps tag → attribute → Rule.
//
// Writes happen during the build phase only. Resolve may be called
// concurrently once building is done.
type Store struct {
	mu         sync.RWMutex
	tags       map[string]map[string]*Rule
	precedence Precedence
	compare    func(a, b Selector) int
}

// Option configures a Store.
type Option func(*Store)

// WithPrecedence sets the rule lookup policy.
func WithPrecedence(p Precedence) Option {
	return func(s *Store) {
		s.precedence = p
	}
}

// WithSelectorOrder replaces the selector comparator used while building.
func WithSelectorOrder(cmp func(a, b Selector) int) Option {
	return func(s *Store) {
		if cmp != nil {
			s.compare = cmp
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tags:    make(map[string]map[string]*Rule),
		compare: CompareSelectors,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Precedence returns the lookup policy.
func (s *Store) Precedence() Precedence {
	return s.precedence
}

// Declare registers a tag with no attribute rules.
func (s *Store) Declare(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declare(strings.ToLower(tag))
}

func (s *Store) declare(tag string) map[string]*Rule {
	attrs, ok := s.tags[tag]
	if !ok {
		attrs = make(map[string]*Rule)
		s.tags[tag] = attrs
	}
	return attrs
}

// Set replaces the rule for tag/attr.
func (s *Store) Set(tag, attr string, rule *Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declare(strings.ToLower(tag))[strings.ToLower(attr)] = rule
}

// Add merges a rule expressed in the template value grammar: an empty value
// is always localizable, otherwise comma separated selectors optionally
// followed by a type token.
func (s *Store) Add(tag, attr, value string) error {
	selectors, typ, err := ParseValue(value)
	if err != nil {
		return err
	}
	sort.SliceStable(selectors, func(i, j int) bool {
		return s.compare(selectors[i], selectors[j]) < 0
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	attrs := s.declare(strings.ToLower(tag))
	key := strings.ToLower(attr)
	attrs[key] = merge(attrs[key], selectors, AlwaysRule(typ), s.compare)
	return nil
}

// Rule returns the rule stored for tag/attr.
func (s *Store) Rule(tag, attr string) (*Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.tags[tag][attr]
	return r, ok
}

// HasTag reports whether tag has been declared.
func (s *Store) HasTag(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tags[tag]
	return ok
}

// Tags returns declared tags sorted.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]string, 0, len(s.tags))
	for t := range s.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of declared tags.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tags)
}

// Resolve reports whether attr on el is localizable and with which type tag.
func (s *Store) Resolve(el Element, attr string) (string, bool) {
	if s == nil {
		return "", false
	}
	tag := strings.ToLower(el.TagName())
	attr = strings.ToLower(attr)

	s.mu.RLock()
	rule := s.lookup(tag, attr)
	s.mu.RUnlock()
	return rule.Resolve(el)
}

func (s *Store) lookup(tag, attr string) *Rule {
	candidates := [][2]string{
		{tag, attr},
		{tag, AnyAttributes},
		{AnyElements, attr},
	}
	if s.precedence == WildcardFirst {
		candidates = [][2]string{
			{AnyElements, attr},
			{tag, attr},
			{tag, AnyAttributes},
		}
	}
	for _, c := range candidates {
		if r, ok := s.tags[c[0]][c[1]]; ok {
			return r
		}
	}
	return nil
}
