package markup

// Predicate selects nodes during a walk.
type Predicate func(*Node) bool

// Walk visits n and its descendants depth-first in document order,
// including template content. Returning false from fn prunes the subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for i := 0; i < len(n.Children); i++ {
		Walk(n.Children[i], fn)
	}
}

// Query returns the first node matching pred, or nil.
func Query(root *Node, pred Predicate) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every node matching pred in document order.
func QueryAll(root *Node, pred Predicate) []*Node {
	var found []*Node
	Walk(root, func(n *Node) bool {
		if pred(n) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// HasTagName matches elements with the given tag.
func HasTagName(tag string) Predicate {
	return func(n *Node) bool {
		return n.IsElement() && n.Tag == tag
	}
}

// HasAttributeValue matches nodes whose attribute equals val.
func HasAttributeValue(key, val string) Predicate {
	return func(n *Node) bool {
		v, ok := n.Attribute(key)
		return ok && v == val
	}
}

// And combines predicates.
func And(preds ...Predicate) Predicate {
	return func(n *Node) bool {
		for _, p := range preds {
			if !p(n) {
				return false
			}
		}
		return true
	}
}
