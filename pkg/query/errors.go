package query

import (
	"errors"
	"fmt"
	"io"
	"math"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// Sentinel errors for query operations.
var (
	ErrNilGrammar      = errors.New("query: nil grammar")
	ErrDialectMismatch = errors.New("query: dialect mismatch")
	ErrTreeClosed      = errors.New("query: tree is closed")
	ErrNoSyntaxTree    = errors.New("query: tree has no tree-sitter backing")
)

// ErrorKind classifies a pattern compilation failure.
type ErrorKind uint8

// Compilation failure kinds, mirroring tree-sitter's TSQueryError plus the
// binding's predicate validation.
const (
	KindUnknown ErrorKind = iota
	KindSyntax
	KindNodeType
	KindField
	KindCapture
	KindStructure
	KindLanguage
	KindPredicate
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "Syntax"
	case KindNodeType:
		return "NodeType"
	case KindField:
		return "Field"
	case KindCapture:
		return "Capture"
	case KindStructure:
		return "Structure"
	case KindLanguage:
		return "Language"
	case KindPredicate:
		return "Predicate"
	default:
		return "Unknown"
	}
}

// CompileError reports a pattern that cannot be compiled for a dialect.
// A bad pattern is an authoring defect in the calling program, so callers
// normally report it and stop rather than retry.
type CompileError struct {
	err     error
	Message string
	Pattern string
	Offset  uint32
	Kind    ErrorKind
	Dialect dialect.Dialect
}

func newCompileError(pattern string, d dialect.Dialect, err error) *CompileError {
	compileErr := &CompileError{
		err:     err,
		Message: err.Error(),
		Pattern: pattern,
		Kind:    KindUnknown,
		Dialect: d,
	}

	var tsErr *sitter.QueryError
	if errors.As(err, &tsErr) {
		compileErr.Message = tsErr.Message
		compileErr.Offset = clampOffset(tsErr.Offset)
		compileErr.Kind = kindOf(tsErr.Kind)
	}

	return compileErr
}

func kindOf(kind sitter.QueryErrorKind) ErrorKind {
	switch kind {
	case sitter.QueryErrorSyntax:
		return KindSyntax
	case sitter.QueryErrorNodeType:
		return KindNodeType
	case sitter.QueryErrorField:
		return KindField
	case sitter.QueryErrorCapture:
		return KindCapture
	case sitter.QueryErrorStructure:
		return KindStructure
	case sitter.QueryErrorLanguage:
		return KindLanguage
	case sitter.QueryErrorPredicate:
		return KindPredicate
	default:
		return KindUnknown
	}
}

func clampOffset(offset uint) uint32 {
	if offset > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(offset)
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("query compilation failed for %s: %s error at offset %d: %s",
		e.Dialect, e.Kind, e.Offset, e.Message)
}

// Unwrap returns the underlying tree-sitter error.
func (e *CompileError) Unwrap() error { return e.err }

// Report writes the full diagnostic: error kind, message, and the pattern
// with a marker under the failing offset.
func (e *CompileError) Report(w io.Writer) {
	fmt.Fprintf(w, "tree-sitter query generation failed: %s\n %s\n", e.Kind, e.Message)
	fmt.Fprintf(w, "dialect: %s\n", e.Dialect)
	fmt.Fprintf(w, "sexpr: %s\n", e.Pattern)

	if col, ok := e.column(); ok {
		fmt.Fprintf(w, "       %*s^\n", col, "")
	}
}

// column returns the marker column for single-line patterns.
func (e *CompileError) column() (int, bool) {
	offset := int(e.Offset)
	if offset > len(e.Pattern) {
		return 0, false
	}

	for _, ch := range e.Pattern {
		if ch == '\n' {
			return 0, false
		}
	}

	return offset, true
}
