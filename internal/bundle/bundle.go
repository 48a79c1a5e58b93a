// Package bundle holds the ordered message bundle built for one component.
package bundle

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved top-level keys, always seeded first and in this order.
const (
	MetaKey  = "meta"
	ModelKey = "model"
)

// Object is an insertion-ordered JSON object.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// Bundle is a nested message store keyed by dotted paths.
//
// Values are string, json.Number, bool, nil, []any or *Object.
type Bundle struct {
	root *Object
}

// New returns a bundle seeded with empty meta and model objects.
func New() *Bundle {
	root := NewObject()
	root.Set(MetaKey, NewObject())
	root.Set(ModelKey, NewObject())
	return &Bundle{root: root}
}

// FromObject wraps an existing object, adding missing reserved keys.
func FromObject(root *Object) *Bundle {
	if root == nil {
		return New()
	}
	if _, ok := root.Get(MetaKey); !ok {
		root.Set(MetaKey, NewObject())
		_ = root.MoveToFront(MetaKey)
	}
	if _, ok := root.Get(ModelKey); !ok {
		root.Set(ModelKey, NewObject())
		_ = root.MoveAfter(ModelKey, MetaKey)
	}
	return &Bundle{root: root}
}

// Root exposes the top-level object.
func (b *Bundle) Root() *Object {
	return b.root
}

// Set stores value under key, creating intermediate objects for each dot.
// An existing non-object on the way is replaced by an object.
func (b *Bundle) Set(key string, value any) {
	parts := strings.Split(key, ".")
	obj := b.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := obj.Get(part)
		child, isObj := next.(*Object)
		if !ok || !isObj {
			child = NewObject()
			obj.Set(part, child)
		}
		obj = child
	}
	obj.Set(parts[len(parts)-1], value)
}

// Get returns the value stored under a dotted key. Numeric segments index arrays.
func (b *Bundle) Get(key string) (any, bool) {
	var cur any = b.root
	for _, part := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case *Object:
			v, ok := node.Get(part)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := index(part, len(node))
			if !ok {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func index(s string, n int) (int, bool) {
	if s == "" || len(s) > 9 {
		return 0, false
	}
	i := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		i = i*10 + int(r-'0')
	}
	return i, i < n
}

// Messages counts the top-level entries other than meta and model.
func (b *Bundle) Messages() int {
	n := 0
	for pair := b.root.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != MetaKey && pair.Key != ModelKey {
			n++
		}
	}
	return n
}

// Leaf is a flattened bundle entry.
type Leaf struct {
	Key   string
	Value any
}

// Leaves flattens the bundle into dotted keys. Arrays are leaves.
func (b *Bundle) Leaves() []Leaf {
	var leaves []Leaf
	collectLeaves(b.root, "", &leaves)
	return leaves
}

func collectLeaves(obj *Object, prefix string, leaves *[]Leaf) {
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := pair.Value.(*Object); ok {
			collectLeaves(child, key, leaves)
			continue
		}
		*leaves = append(*leaves, Leaf{Key: key, Value: pair.Value})
	}
}

// Plain converts the bundle into map[string]any and []any values.
func (b *Bundle) Plain() map[string]any {
	return plainObject(b.root)
}

func plainObject(obj *Object) map[string]any {
	out := make(map[string]any, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = plainValue(pair.Value)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return plainObject(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
