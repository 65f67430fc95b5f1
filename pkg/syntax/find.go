package syntax

// Find returns the first node of the given kind in the subtree rooted at n,
// in preorder: a node before its children, children left to right. n itself
// is the first candidate.
//
// The search ends when the cursor is back on n with no move left, so a kind
// that does not occur yields (null, false). ERROR nodes are ordinary
// candidates: they match only kind "ERROR", and their children are searched
// like any other subtree.
func Find(n Node, kind string) (Node, bool) {
	cursor := NewCursor(n)

	for {
		current := cursor.Node()
		if current.IsNull() {
			return Node{}, false
		}

		if current.Kind() == kind {
			return current, true
		}

		if cursor.GotoFirstChild() {
			continue
		}

		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return Node{}, false
			}
		}
	}
}

// FindAll returns every node of the given kind in the subtree rooted at n,
// in preorder.
func FindAll(n Node, kind string) []Node {
	var found []Node

	Walk(n, func(visited Node) bool {
		if visited.Kind() == kind {
			found = append(found, visited)
		}

		return true
	})

	return found
}

// Walk visits the subtree rooted at n in preorder. Returning false from fn
// skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	cursor := NewCursor(n)
	if cursor.Node().IsNull() {
		return
	}

	for {
		if fn(cursor.Node()) && cursor.GotoFirstChild() {
			continue
		}

		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return
			}
		}
	}
}
