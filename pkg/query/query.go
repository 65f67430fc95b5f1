// Package query compiles tree-sitter S-expression patterns against a dialect
// grammar and runs them over parsed syntax trees.
package query

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// Query is a compiled pattern bound to the grammar it was compiled for.
// It is immutable after compilation and may be shared between goroutines.
type Query struct {
	raw          *sitter.Query
	grammar      dialect.Grammar
	pattern      string
	captureNames []string
}

// Compile compiles pattern for grammar. A pattern that names node kinds,
// fields or captures the grammar does not define fails with a *CompileError.
func Compile(pattern string, grammar dialect.Grammar) (*Query, error) {
	if grammar == nil {
		return nil, ErrNilGrammar
	}

	raw, err := sitter.NewQuery(grammar.Language(), []byte(pattern))
	if err != nil {
		return nil, newCompileError(pattern, grammar.Dialect(), err)
	}

	count := raw.CaptureCount()
	names := make([]string, 0, count)

	for id := range count {
		names = append(names, raw.CaptureNameForID(id))
	}

	return &Query{
		raw:          raw,
		grammar:      grammar,
		pattern:      pattern,
		captureNames: names,
	}, nil
}

// CompileDialect compiles pattern for the bundled grammar of dialect d.
func CompileDialect(pattern string, d dialect.Dialect) (*Query, error) {
	return Compile(pattern, dialect.For(d))
}

// MustCompile is like Compile but panics on error. It is meant for patterns
// fixed at build time.
func MustCompile(pattern string, grammar dialect.Grammar) *Query {
	q, err := Compile(pattern, grammar)
	if err != nil {
		panic(err)
	}

	return q
}

// Dialect reports the dialect the query was compiled for.
func (q *Query) Dialect() dialect.Dialect { return q.grammar.Dialect() }

// Grammar returns the grammar the query was compiled for.
func (q *Query) Grammar() dialect.Grammar { return q.grammar }

// Pattern returns the source pattern.
func (q *Query) Pattern() string { return q.pattern }

// CaptureNames lists the pattern's capture names, indexed by capture id.
func (q *Query) CaptureNames() []string {
	names := make([]string, len(q.captureNames))
	copy(names, q.captureNames)

	return names
}
