package syntax

// Cursor walks a subtree. It starts on, and never leaves, the node it was
// created on: moving to the parent or a sibling of that node fails.
type Cursor struct {
	tree *Tree
	root NodeID
	cur  NodeID
}

// NewCursor returns a cursor positioned on n. A cursor on the null node
// reports every move as failed.
func NewCursor(n Node) *Cursor {
	return &Cursor{
		tree: n.tree,
		root: n.ID(),
		cur:  n.ID(),
	}
}

// Node returns the node the cursor is on.
func (c *Cursor) Node() Node {
	if c.tree == nil || c.cur == NoNode {
		return Node{}
	}

	return Node{tree: c.tree, id: c.cur}
}

// FieldName returns the field binding the current node to its parent.
func (c *Cursor) FieldName() string { return c.Node().Field() }

// Depth returns how many levels below the starting node the cursor is.
func (c *Cursor) Depth() int {
	depth := 0

	for id := c.cur; id != c.root && id != NoNode; id = c.tree.nodes[id].parent {
		depth++
	}

	return depth
}

// GotoFirstChild moves to the first child of the current node.
func (c *Cursor) GotoFirstChild() bool {
	if c.tree == nil || c.cur == NoNode {
		return false
	}

	child := c.tree.nodes[c.cur].firstChild
	if child == NoNode {
		return false
	}

	c.cur = child

	return true
}

// GotoNextSibling moves to the next sibling of the current node.
func (c *Cursor) GotoNextSibling() bool {
	if c.tree == nil || c.cur == NoNode || c.cur == c.root {
		return false
	}

	next := c.tree.nodes[c.cur].nextSibling
	if next == NoNode {
		return false
	}

	c.cur = next

	return true
}

// GotoParent moves to the parent of the current node.
func (c *Cursor) GotoParent() bool {
	if c.tree == nil || c.cur == NoNode || c.cur == c.root {
		return false
	}

	c.cur = c.tree.nodes[c.cur].parent

	return true
}

// Reset repositions the cursor on n, which becomes the new starting node.
func (c *Cursor) Reset(n Node) {
	c.tree = n.tree
	c.root = n.ID()
	c.cur = n.ID()
}
