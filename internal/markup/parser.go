package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads a full HTML document into a Node tree.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return convertNode(doc), nil
}

// ParseString is Parse over a string.
func ParseString(content string) (*Node, error) {
	return Parse(strings.NewReader(content))
}

// convertNode recursively converts html.Node into Node, moving template
// children under a content fragment.
func convertNode(src *html.Node) *Node {
	n := &Node{}
	switch src.Type {
	case html.DocumentNode:
		n.Kind = DocumentNode
	case html.ElementNode:
		n.Kind = ElementNode
		n.Tag = strings.ToLower(src.Data)
		n.Namespace = src.Namespace
	case html.CommentNode:
		n.Kind = CommentNode
		n.Data = src.Data
	case html.DoctypeNode:
		n.Kind = DoctypeNode
		n.Data = src.Data
	default:
		n.Kind = TextNode
		n.Data = src.Data
	}

	if len(src.Attr) > 0 {
		n.Attrs = make([]Attribute, 0, len(src.Attr))
		for _, a := range src.Attr {
			n.Attrs = append(n.Attrs, Attribute{Namespace: a.Namespace, Key: a.Key, Val: a.Val})
		}
	}

	parent := n
	if n.IsTemplate() {
		parent = NewFragment()
		n.AppendChild(parent)
	}
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		parent.AppendChild(convertNode(c))
	}
	return n
}

// Render serializes n. Fragments render their children in order.
func Render(w io.Writer, n *Node) error {
	if n.Kind == FragmentNode {
		for _, c := range n.Children {
			if err := Render(w, c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := html.Render(w, toHTML(n)); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toHTML(n *Node) *html.Node {
	out := &html.Node{}
	switch n.Kind {
	case DocumentNode:
		out.Type = html.DocumentNode
	case ElementNode:
		out.Type = html.ElementNode
		out.Data = n.Tag
		out.DataAtom = atom.Lookup([]byte(n.Tag))
		out.Namespace = n.Namespace
	case CommentNode:
		out.Type = html.CommentNode
		out.Data = n.Data
	case DoctypeNode:
		out.Type = html.DoctypeNode
		out.Data = n.Data
	default:
		out.Type = html.TextNode
		out.Data = n.Data
	}
	for _, a := range n.Attrs {
		out.Attr = append(out.Attr, html.Attribute{Namespace: a.Namespace, Key: a.Key, Val: a.Val})
	}
	appendHTMLChildren(out, n)
	return out
}

func appendHTMLChildren(out *html.Node, n *Node) {
	for _, c := range n.Children {
		if c.Kind == FragmentNode {
			appendHTMLChildren(out, c)
			continue
		}
		out.AppendChild(toHTML(c))
	}
}
