package query

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// Capture is one named node of a match.
type Capture struct {
	Name string
	Node syntax.Node
}

// Match is one successful application of a pattern.
type Match struct {
	Captures []Capture
	Pattern  int
}

// Capture returns the first node captured under name.
func (m Match) Capture(name string) (syntax.Node, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c.Node, true
		}
	}

	return syntax.Node{}, false
}

// Text returns the source text of the first node captured under name, or
// an empty string when there is none.
func (m Match) Text(name string, source []byte) string {
	n, ok := m.Capture(name)
	if !ok {
		return ""
	}

	return n.Text(source)
}

// Matches runs the query over the whole tree and returns every match in
// document order. The tree must have been parsed with the grammar the query
// was compiled for.
func (q *Query) Matches(tree *syntax.Tree) ([]Match, error) {
	var matches []Match

	err := q.Each(tree, func(m Match) bool {
		matches = append(matches, m)

		return true
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

// Each runs the query like Matches but hands matches to fn one at a time as
// tree-sitter produces them. Iteration stops when fn returns false.
func (q *Query) Each(tree *syntax.Tree, fn func(Match) bool) error {
	if tree == nil {
		return ErrNoSyntaxTree
	}

	if err := q.checkTree(tree); err != nil {
		return err
	}

	root, ok := tree.SitterRoot()
	if !ok {
		return ErrNoSyntaxTree
	}

	cursor := sitter.NewQueryCursor()
	iter := cursor.Matches(q.raw, root, tree.Source())

	for match := iter.Next(); match != nil; match = iter.Next() {
		if !fn(q.convert(tree, match)) {
			return nil
		}
	}

	return nil
}

func (q *Query) checkTree(tree *syntax.Tree) error {
	if tree.Closed() {
		return ErrTreeClosed
	}

	if tree.Dialect() != q.Dialect() || tree.Grammar().Name() != q.grammar.Name() {
		return fmt.Errorf("%w: query compiled for %s (%s), tree parsed as %s (%s)",
			ErrDialectMismatch, q.Dialect(), q.grammar.Name(), tree.Dialect(), tree.Grammar().Name())
	}

	return nil
}

func (q *Query) convert(tree *syntax.Tree, match *sitter.QueryMatch) Match {
	converted := Match{
		Pattern:  int(match.PatternIndex),
		Captures: make([]Capture, 0, len(match.Captures)),
	}

	for _, c := range match.Captures {
		if c.Node.IsNull() {
			continue
		}

		converted.Captures = append(converted.Captures, Capture{
			Name: q.captureName(c.Index),
			Node: tree.Resolve(c.Node),
		})
	}

	return converted
}

func (q *Query) captureName(id uint32) string {
	if int(id) < len(q.captureNames) {
		return q.captureNames[id]
	}

	return q.raw.CaptureNameForID(id)
}
