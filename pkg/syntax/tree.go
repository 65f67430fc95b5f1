// Package syntax parses source text into an arena-backed syntax tree and
// provides the navigation primitives built on it: cursors, preorder search
// and field text extraction.
package syntax

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// KindError is the kind label tree-sitter gives to regions it could not parse.
const KindError = "ERROR"

// NodeID indexes a node inside its Tree's arena.
type NodeID int32

// NoNode is the NodeID of an absent link.
const NoNode NodeID = -1

// Point is a zero-based row/column position. Column counts bytes.
type Point struct {
	Row    uint32 `json:"row"    yaml:"row"`
	Column uint32 `json:"column" yaml:"column"`
}

// entry is one arena slot. Links are arena indices, never pointers.
type entry struct {
	kind        string
	field       string
	startPoint  Point
	endPoint    Point
	start       uint32
	end         uint32
	parent      NodeID
	firstChild  NodeID
	nextSibling NodeID
	named       bool
	missing     bool
}

// Tree is a parsed source file. Nodes live in a flat arena addressed by
// NodeID; the root is always NodeID 0 and spans the whole input.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	grammar  dialect.Grammar
	raw      *sitter.Tree
	source   []byte
	nodes    []entry
	tsNodes  []sitter.Node
	index    map[spanKey][]NodeID
	hasError bool
	closed   bool
}

// Dialect reports the dialect the tree was parsed with.
func (t *Tree) Dialect() dialect.Dialect { return t.grammar.Dialect() }

// Grammar returns the grammar the tree was parsed with.
func (t *Tree) Grammar() dialect.Grammar { return t.grammar }

// Root returns the root node.
func (t *Tree) Root() Node { return Node{tree: t, id: 0} }

// HasError reports whether any part of the input failed to parse.
func (t *Tree) HasError() bool { return t.hasError }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Source returns the bytes the tree was parsed from. The slice is shared.
func (t *Tree) Source() []byte { return t.source }

// Node returns the node with the given id, or a null Node when id is out of range.
func (t *Tree) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}
	}

	return Node{tree: t, id: id}
}

// Close releases the underlying tree-sitter tree. Navigation keeps working
// after Close; only query matching needs the tree-sitter tree.
func (t *Tree) Close() {
	if t.closed {
		return
	}

	t.closed = true

	if t.raw != nil {
		t.raw.Close()
		t.raw = nil
		t.tsNodes = nil
		t.index = nil
	}
}

// Node is a lightweight handle on one arena slot. The zero value is the
// null node.
type Node struct {
	tree *Tree
	id   NodeID
}

// IsNull reports whether n refers to no node.
func (n Node) IsNull() bool { return n.tree == nil || n.id == NoNode }

// ID returns the arena index of n, or NoNode for the null node.
func (n Node) ID() NodeID {
	if n.tree == nil {
		return NoNode
	}

	return n.id
}

// Tree returns the owning tree.
func (n Node) Tree() *Tree { return n.tree }

func (n Node) entry() *entry { return &n.tree.nodes[n.id] }

func (n Node) link(id NodeID) Node {
	if id == NoNode {
		return Node{}
	}

	return Node{tree: n.tree, id: id}
}

// Kind is the grammar's node type label, e.g. "function_definition".
func (n Node) Kind() string {
	if n.IsNull() {
		return ""
	}

	return n.entry().kind
}

// Field is the name of the field binding n to its parent, or "".
func (n Node) Field() string {
	if n.IsNull() {
		return ""
	}

	return n.entry().field
}

// StartByte is the inclusive start offset of n in the source.
func (n Node) StartByte() uint32 {
	if n.IsNull() {
		return 0
	}

	return n.entry().start
}

// EndByte is the exclusive end offset of n in the source.
func (n Node) EndByte() uint32 {
	if n.IsNull() {
		return 0
	}

	return n.entry().end
}

// StartPoint is the row/column of StartByte.
func (n Node) StartPoint() Point {
	if n.IsNull() {
		return Point{}
	}

	return n.entry().startPoint
}

// EndPoint is the row/column of EndByte.
func (n Node) EndPoint() Point {
	if n.IsNull() {
		return Point{}
	}

	return n.entry().endPoint
}

// IsNamed reports whether n is a named grammar node rather than anonymous syntax.
func (n Node) IsNamed() bool { return !n.IsNull() && n.entry().named }

// IsMissing reports whether n is a zero-width node inserted by error recovery.
func (n Node) IsMissing() bool { return !n.IsNull() && n.entry().missing }

// IsError reports whether n is an ERROR node.
func (n Node) IsError() bool { return n.Kind() == KindError }

// Parent returns the parent of n, or the null node at the root.
func (n Node) Parent() Node {
	if n.IsNull() {
		return Node{}
	}

	return n.link(n.entry().parent)
}

// FirstChild returns the first child of n, or the null node for leaves.
func (n Node) FirstChild() Node {
	if n.IsNull() {
		return Node{}
	}

	return n.link(n.entry().firstChild)
}

// NextSibling returns the sibling following n, or the null node.
func (n Node) NextSibling() Node {
	if n.IsNull() {
		return Node{}
	}

	return n.link(n.entry().nextSibling)
}

// Children returns the direct children of n in source order.
func (n Node) Children() []Node {
	var children []Node

	for child := n.FirstChild(); !child.IsNull(); child = child.NextSibling() {
		children = append(children, child)
	}

	return children
}

// ChildByField returns the first direct child bound to field, or the null node.
func (n Node) ChildByField(field string) Node {
	if field == "" {
		return Node{}
	}

	for child := n.FirstChild(); !child.IsNull(); child = child.NextSibling() {
		if child.entry().field == field {
			return child
		}
	}

	return Node{}
}

// Text returns the source bytes covered by n. It returns "" when source is
// shorter than the node's range, which happens only if a different buffer is
// passed than the one that was parsed.
func (n Node) Text(source []byte) string {
	if n.IsNull() {
		return ""
	}

	e := n.entry()
	if int(e.end) > len(source) || e.start > e.end {
		return ""
	}

	return string(source[e.start:e.end])
}
