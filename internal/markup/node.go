package markup

import (
	"strings"
)

// Kind identifies the closed set of node kinds the extractor distinguishes.
type Kind uint8

const (
	DocumentNode Kind = iota
	FragmentNode
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
)

// String returns the node name used for path segments of non-element nodes.
func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "#document"
	case FragmentNode:
		return "#document-fragment"
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DoctypeNode:
		return "#documentType"
	default:
		return "#element"
	}
}

// Attribute is a single element attribute. Key is lower-cased by the parser.
type Attribute struct {
	Namespace string
	Key       string
	Val       string
}

// Node is a mutable markup tree node.
//
// Template elements always hold exactly one FragmentNode child carrying the
// template content, so traversal sees the same shape as a browser DOM.
type Node struct {
	Kind      Kind
	Tag       string // element name, lower case
	Namespace string
	Data      string // text, comment or doctype payload
	Attrs     []Attribute
	Parent    *Node
	Children  []*Node
}

// NewElement creates a detached element. Template elements get their content fragment.
func NewElement(tag string) *Node {
	n := &Node{Kind: ElementNode, Tag: strings.ToLower(tag)}
	if n.IsTemplate() {
		n.AppendChild(NewFragment())
	}
	return n
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// NewFragment creates a detached document fragment.
func NewFragment() *Node {
	return &Node{Kind: FragmentNode}
}

// Name returns the DOM node name: the tag for elements, "#text" and friends otherwise.
func (n *Node) Name() string {
	if n.Kind == ElementNode {
		return n.Tag
	}
	return n.Kind.String()
}

// TagName returns the element tag, or an empty string for non-elements.
func (n *Node) TagName() string {
	if n.Kind != ElementNode {
		return ""
	}
	return n.Tag
}

func (n *Node) IsElement() bool { return n != nil && n.Kind == ElementNode }
func (n *Node) IsText() bool    { return n != nil && n.Kind == TextNode }
func (n *Node) IsComment() bool { return n != nil && n.Kind == CommentNode }

// IsTemplate reports whether n is an HTML <template> element.
func (n *Node) IsTemplate() bool {
	return n.IsElement() && n.Tag == "template" && n.Namespace == ""
}

// Content returns the content fragment of a template element, creating it when missing.
func (n *Node) Content() *Node {
	if !n.IsTemplate() {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == FragmentNode {
			return c
		}
	}
	frag := NewFragment()
	n.AppendChild(frag)
	return frag
}

// Attribute returns the value of the named attribute.
func (n *Node) Attribute(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttributeValue returns the attribute value or an empty string.
func (n *Node) AttributeValue(key string) string {
	v, _ := n.Attribute(key)
	return v
}

// HasAttribute reports whether the attribute is present, even with an empty value.
func (n *Node) HasAttribute(key string) bool {
	_, ok := n.Attribute(key)
	return ok
}

// SetAttribute replaces the attribute value in place or appends a new attribute.
func (n *Node) SetAttribute(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Namespace == "" && n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Val: val})
}

// RemoveAttribute drops the attribute if present.
func (n *Node) RemoveAttribute(key string) {
	for i := range n.Attrs {
		if n.Attrs[i].Namespace == "" && n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	switch n.Kind {
	case TextNode, CommentNode:
		return n.Data
	case DoctypeNode:
		return ""
	}
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.Children {
		switch c.Kind {
		case TextNode:
			b.WriteString(c.Data)
		case ElementNode, FragmentNode:
			c.collectText(b)
		}
	}
}

// SetTextContent sets the data of a text node, or replaces all children of
// any other node with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.Kind == TextNode || n.Kind == CommentNode {
		n.Data = text
		return
	}
	n.RemoveChildren()
	n.AppendChild(NewText(text))
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// AppendChild detaches c from its current parent and appends it to n.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return
		}
	}
}

// ReplaceChild puts replacement at the position of old.
func (n *Node) ReplaceChild(old, replacement *Node) {
	if replacement.Parent != nil {
		replacement.Parent.RemoveChild(replacement)
	}
	for i, child := range n.Children {
		if child == old {
			n.Children[i] = replacement
			replacement.Parent = n
			old.Parent = nil
			return
		}
	}
}

// RemoveChildren detaches every child.
func (n *Node) RemoveChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
}
