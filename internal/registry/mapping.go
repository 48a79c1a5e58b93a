package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToMap exports the store in the plain mapping shape:
// tag → attr → true | false | "type" | {selector: ..., "": fallback}.
func (s *Store) ToMap() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.tags))
	for tag, attrs := range s.tags {
		m := make(map[string]any, len(attrs))
		for attr, rule := range attrs {
			m[attr] = ruleToValue(rule)
		}
		out[tag] = m
	}
	return out
}

func ruleToValue(r *Rule) any {
	if r == nil {
		return false
	}
	switch r.Kind {
	case Always:
		if r.Type == "" {
			return true
		}
		return r.Type
	case Conditional:
		m := make(map[string]any, len(r.Branches)+1)
		for _, b := range r.Branches {
			m[b.Selector.Text] = ruleToValue(b.Rule)
		}
		if r.Fallback != nil {
			m[""] = ruleToValue(r.Fallback)
		}
		return m
	default:
		return false
	}
}

// LoadMap merges a mapping-shaped registry into the store, replacing rules
// for the tag/attr pairs it names.
func (s *Store) LoadMap(m map[string]any) error {
	for tag, v := range m {
		attrs, ok := v.(map[string]any)
		if !ok {
			if v == nil {
				s.Declare(tag)
				continue
			}
			return fmt.Errorf("%w: tag %q is not a mapping", ErrInvalidRule, tag)
		}
		s.Declare(tag)
		for attr, value := range attrs {
			rule, err := s.ruleFromValue(value)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", tag, attr, err)
			}
			s.Set(tag, attr, rule)
		}
	}
	return nil
}

func (s *Store) ruleFromValue(v any) (*Rule, error) {
	switch t := v.(type) {
	case nil:
		return AlwaysRule(""), nil
	case bool:
		if t {
			return AlwaysRule(""), nil
		}
		return NeverRule(), nil
	case string:
		return AlwaysRule(t), nil
	case map[string]any:
		rule := &Rule{Kind: Conditional}
		for key, sub := range t {
			child, err := s.ruleFromValue(sub)
			if err != nil {
				return nil, err
			}
			if key == "" {
				rule.Fallback = child
				continue
			}
			sel, err := ParseSelector(key)
			if err != nil {
				return nil, err
			}
			rule.Branches = append(rule.Branches, &Branch{Selector: sel, Rule: child})
		}
		sort.SliceStable(rule.Branches, func(i, j int) bool {
			return s.compare(rule.Branches[i].Selector, rule.Branches[j].Selector) < 0
		})
		return rule, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %v", ErrInvalidRule, v)
	}
}

// MarshalJSON encodes the mapping shape.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// UnmarshalJSON merges a JSON mapping into the store.
func (s *Store) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode registry: %w", err)
	}
	if s.tags == nil {
		s.tags = make(map[string]map[string]*Rule)
		s.compare = CompareSelectors
	}
	return s.LoadMap(m)
}

// ReadFile merges a JSON or YAML registry file into the store.
func (s *Store) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return s.LoadMap(m)
}

// WriteFile saves the store as YAML for .yaml/.yml paths and JSON otherwise.
func (s *Store) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s.ToMap())
	default:
		data, err = json.MarshalIndent(s.ToMap(), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}
