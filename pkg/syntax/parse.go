package syntax

import (
	"context"
	"math"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// internCap is the initial capacity of the per-parse kind/field interner.
// C and C++ grammars each use a few hundred distinct labels.
const internCap = 256

// Parse parses source with the given grammar. It never fails: malformed
// regions become ERROR nodes (or zero-width missing nodes) inside an
// otherwise complete tree, and the root always spans [0, len(source)).
//
// Every call uses its own tree-sitter parser, so concurrent calls do not
// share state.
func Parse(source []byte, grammar dialect.Grammar) *Tree {
	tree := &Tree{
		grammar: grammar,
		source:  source,
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar.Language())

	raw, err := parser.ParseString(context.Background(), nil, source)
	if err != nil || raw == nil {
		tree.nodes = []entry{errorRoot(source)}
		tree.hasError = true

		return tree
	}

	root := raw.RootNode()
	if root.IsNull() {
		raw.Close()

		tree.nodes = []entry{errorRoot(source)}
		tree.hasError = true

		return tree
	}

	tree.raw = raw
	build(tree, root)

	// tree-sitter excludes leading and trailing trivia from the root range.
	tree.nodes[0].start = 0
	tree.nodes[0].startPoint = Point{}
	tree.nodes[0].end = clampOffset(len(source))
	tree.nodes[0].endPoint = pointAt(source, len(source))

	return tree
}

// ParseDialect parses source with the bundled grammar of d.
func ParseDialect(source []byte, d dialect.Dialect) *Tree {
	return Parse(source, dialect.For(d))
}

// build flattens the tree-sitter tree into the arena with one preorder walk.
func build(tree *Tree, root sitter.Node) {
	b := builder{
		tree:     tree,
		interner: make(map[string]string, internCap),
	}

	cursor := sitter.NewTreeCursor(root)

	cur := b.append(cursor.CurrentNode(), "", NoNode, NoNode)

	for {
		if cursor.GoToFirstChild() {
			cur = b.append(cursor.CurrentNode(), cursor.CurrentFieldName(), cur, NoNode)

			continue
		}

		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return
			}

			cur = tree.nodes[cur].parent
		}

		cur = b.append(cursor.CurrentNode(), cursor.CurrentFieldName(), tree.nodes[cur].parent, cur)
	}
}

type builder struct {
	tree     *Tree
	interner map[string]string
}

// append adds a node under parent, after prev when prev is set.
func (b *builder) append(tsNode sitter.Node, field string, parent, prev NodeID) NodeID {
	id := NodeID(len(b.tree.nodes))

	kind := b.intern(tsNode.Type())
	missing := tsNode.IsMissing()

	if missing || kind == KindError {
		b.tree.hasError = true
	}

	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	b.tree.tsNodes = append(b.tree.tsNodes, tsNode)
	b.tree.nodes = append(b.tree.nodes, entry{
		kind:        kind,
		field:       b.intern(field),
		start:       clampOffset(int(tsNode.StartByte())), //nolint:gosec // tree-sitter offsets fit in int
		end:         clampOffset(int(tsNode.EndByte())),   //nolint:gosec // tree-sitter offsets fit in int
		startPoint:  Point{Row: uint32(start.Row), Column: uint32(start.Column)},
		endPoint:    Point{Row: uint32(end.Row), Column: uint32(end.Column)},
		parent:      parent,
		firstChild:  NoNode,
		nextSibling: NoNode,
		named:       tsNode.IsNamed(),
		missing:     missing,
	})

	switch {
	case prev != NoNode:
		b.tree.nodes[prev].nextSibling = id
	case parent != NoNode:
		b.tree.nodes[parent].firstChild = id
	}

	return id
}

func (b *builder) intern(s string) string {
	if s == "" {
		return ""
	}

	if interned, ok := b.interner[s]; ok {
		return interned
	}

	b.interner[s] = s

	return s
}

func errorRoot(source []byte) entry {
	return entry{
		kind:        KindError,
		end:         clampOffset(len(source)),
		endPoint:    pointAt(source, len(source)),
		parent:      NoNode,
		firstChild:  NoNode,
		nextSibling: NoNode,
		named:       true,
	}
}

func clampOffset(v int) uint32 {
	if v < 0 {
		return 0
	}

	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(v)
}

// pointAt computes the row/column of byte offset in source.
func pointAt(source []byte, offset int) Point {
	var p Point

	for _, ch := range source[:offset] {
		if ch == '\n' {
			p.Row++
			p.Column = 0

			continue
		}

		p.Column++
	}

	return p
}
