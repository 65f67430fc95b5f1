package syntax

import (
	"fmt"
	"strings"
)

// SExpr renders the named nodes of the subtree at n as a tree-sitter style
// S-expression, e.g. "(call_expression function: (identifier) arguments: (argument_list))".
func SExpr(n Node) string {
	if n.IsNull() {
		return ""
	}

	var sb strings.Builder

	writeSExpr(&sb, n)

	return sb.String()
}

func writeSExpr(sb *strings.Builder, n Node) {
	if n.IsMissing() {
		fmt.Fprintf(sb, "(MISSING %s)", n.Kind())

		return
	}

	sb.WriteByte('(')
	sb.WriteString(n.Kind())

	for child := n.FirstChild(); !child.IsNull(); child = child.NextSibling() {
		if !child.IsNamed() && !child.IsMissing() {
			continue
		}

		sb.WriteByte(' ')

		if field := child.Field(); field != "" {
			sb.WriteString(field)
			sb.WriteString(": ")
		}

		writeSExpr(sb, child)
	}

	sb.WriteByte(')')
}

// OutlineOptions controls Outline.
type OutlineOptions struct {
	// Anonymous includes punctuation and keyword tokens.
	Anonymous bool
	// Ranges appends the byte range of each node.
	Ranges bool
}

// Outline renders the subtree at n one node per line, indented by depth.
// The format is stable, which makes it suitable for line diffs.
func Outline(n Node, opts OutlineOptions) []string {
	var lines []string

	cursor := NewCursor(n)
	if cursor.Node().IsNull() {
		return nil
	}

	for {
		current := cursor.Node()
		if opts.Anonymous || current.IsNamed() || current.IsMissing() {
			lines = append(lines, outlineLine(current, cursor.Depth(), opts.Ranges))
		}

		if cursor.GotoFirstChild() {
			continue
		}

		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return lines
			}
		}
	}
}

func outlineLine(n Node, depth int, ranges bool) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("  ", depth))

	if field := n.Field(); field != "" {
		sb.WriteString(field)
		sb.WriteString(": ")
	}

	kind := n.Kind()
	if !n.IsNamed() {
		kind = fmt.Sprintf("%q", kind)
	}

	if n.IsMissing() {
		kind = "MISSING " + kind
	}

	sb.WriteString(kind)

	if ranges {
		fmt.Fprintf(&sb, " [%d, %d)", n.StartByte(), n.EndByte())
	}

	return sb.String()
}
