package syntax

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// spanKey narrows identity lookups to nodes of one kind over one raw range.
// Nested nodes can share a key, so the final match is by node identity.
type spanKey struct {
	kind  string
	start uint32
	end   uint32
}

func keyOf(tsNode sitter.Node) spanKey {
	return spanKey{
		kind:  tsNode.Type(),
		start: clampOffset(int(tsNode.StartByte())), //nolint:gosec // tree-sitter offsets fit in int
		end:   clampOffset(int(tsNode.EndByte())),   //nolint:gosec // tree-sitter offsets fit in int
	}
}

// SitterRoot exposes the tree-sitter root for query execution. It reports
// false when the tree was closed or parsing produced no tree-sitter tree.
func (t *Tree) SitterRoot() (sitter.Node, bool) {
	if t.raw == nil {
		return sitter.Node{}, false
	}

	root := t.raw.RootNode()

	return root, !root.IsNull()
}

// Closed reports whether Close has been called.
func (t *Tree) Closed() bool { return t.closed }

// Resolve maps a tree-sitter node of this tree to its arena node, or the
// null node when it does not belong to the tree.
func (t *Tree) Resolve(tsNode sitter.Node) Node {
	if tsNode.IsNull() || t.raw == nil {
		return Node{}
	}

	if t.index == nil {
		t.buildIndex()
	}

	for _, id := range t.index[keyOf(tsNode)] {
		if t.tsNodes[id].Equal(tsNode) {
			return Node{tree: t, id: id}
		}
	}

	return Node{}
}

// buildIndex groups arena ids by the raw range of their tree-sitter node.
func (t *Tree) buildIndex() {
	t.index = make(map[spanKey][]NodeID, len(t.tsNodes))

	for id, tsNode := range t.tsNodes {
		key := keyOf(tsNode)
		t.index[key] = append(t.index[key], NodeID(id)) //nolint:gosec // arena size is bounded by source length
	}
}
