package extract

import (
	"strconv"
	"strings"
)

const fragmentSegment = "#document-fragment"

// Path is the stack of segments from the template root to the current node.
type Path []string

// enter pushes seg and returns the matching pop.
func (p *Path) enter(seg string) func() {
	*p = append(*p, seg)
	return func() {
		*p = (*p)[:len(*p)-1]
	}
}

// segment returns the path segment for a node: "#id" when it has an explicit
// id, otherwise the node name suffixed with its sibling index.
func segment(name, id string, index int) string {
	if id != "" {
		return "#" + id
	}
	if index > 0 {
		return name + "_" + strconv.Itoa(index)
	}
	return name
}

// GenerateMessageID derives the bundle key for the node at the end of path.
// A non-empty explicitID is returned verbatim.
func GenerateMessageID(path []string, explicitID string) string {
	if explicitID != "" {
		return explicitID
	}
	var id string
	for _, seg := range path[min(1, len(path)):] {
		switch {
		case seg == fragmentSegment:
		case strings.HasPrefix(seg, "#"):
			if id != "" && strings.HasPrefix(seg, "#text") {
				id += ":" + seg[1:]
			} else {
				id = seg[1:]
			}
		case id != "":
			id += ":" + seg
		default:
			id = seg
		}
	}
	if id == "" && len(path) > 0 {
		id = strings.TrimPrefix(path[0], "#")
	}
	return id
}
