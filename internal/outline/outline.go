// Package outline parses a single org-mode outline document into a tree of
// headings with property drawers, tags, and body segments.
package outline

import (
	"sort"
	"strings"
)

// Document is the root of a parsed outline. Immutable after Parse returns.
type Document struct {
	Nodes []*Node
}

// Node represents one heading and everything attached to it.
type Node struct {
	Depth      int
	Title      string
	Tags       []string
	Properties map[string]string
	Body       []Segment
	Children   []*Node
	Line       int

	parent *Node
}

// Parent returns the enclosing heading, or nil for a top-level node.
func (n *Node) Parent() *Node { return n.parent }

// Property returns the value for key and whether it was declared. Drawer
// keys are stored as written; matching is case-insensitive so custom fields
// keep their original spelling on output. An exact-key hit wins; when only
// case variants exist, the lexicographically smallest key is used, so the
// result never depends on map iteration order.
func (n *Node) Property(key string) (string, bool) {
	if v, ok := n.Properties[key]; ok {
		return v, true
	}
	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		if strings.EqualFold(k, key) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return n.Properties[keys[0]], true
}

// InheritedProperty walks from the node to the root and returns the first
// declared value for key.
func (n *Node) InheritedProperty(key string) (string, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := cur.Property(key); ok {
			return v, ok
		}
	}
	return "", false
}

// Walk visits every node in document order.
func (d *Document) Walk(fn func(*Node)) {
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			visit(n.Children)
		}
	}
	visit(d.Nodes)
}

// SegmentKind discriminates body segment types.
type SegmentKind int

const (
	KindParagraph SegmentKind = iota
	KindCodeBlock
	KindExample
	KindQuote
	KindList
)

// Segment is one block-level piece of a node's body, in source order.
type Segment struct {
	Kind  SegmentKind
	Text  string // paragraph/list/quote text, lines joined by \n
	Lang  string // code block language tag, may be empty
	Code  string // literal block content, preserved byte-for-byte
	Lines []string
}
