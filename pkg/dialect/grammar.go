package dialect

import (
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/c"
	"github.com/alexaandru/go-sitter-forest/cpp"
)

// Grammar is a handle on a tree-sitter language tagged with its dialect.
// Implementations must be immutable and safe for concurrent use.
type Grammar interface {
	// Dialect is the vocabulary the grammar belongs to.
	Dialect() Dialect
	// Name is the grammar's short name, e.g. "c".
	Name() string
	// Language is the tree-sitter language used by parsers and queries.
	Language() *sitter.Language
}

// LanguageFunc returns the raw TSLanguage pointer exported by a grammar module.
type LanguageFunc func() unsafe.Pointer

type forestGrammar struct {
	load    LanguageFunc
	lang    *sitter.Language
	name    string
	once    sync.Once
	dialect Dialect
}

// NewGrammar wraps a grammar module's GetLanguage function. The language is
// loaded on first use and kept for the life of the process.
func NewGrammar(d Dialect, name string, load LanguageFunc) Grammar {
	return &forestGrammar{
		load:    load,
		name:    name,
		dialect: d,
	}
}

func (g *forestGrammar) Dialect() Dialect { return g.dialect }

func (g *forestGrammar) Name() string { return g.name }

func (g *forestGrammar) Language() *sitter.Language {
	g.once.Do(func() {
		g.lang = sitter.NewLanguage(g.load())
	})

	return g.lang
}

//nolint:gochecknoglobals // grammars are process-lifetime singletons.
var (
	baselineGrammar = NewGrammar(Baseline, "c", c.GetLanguage)
	extendedGrammar = NewGrammar(Extended, "cpp", cpp.GetLanguage)

	defaultProvider = NewProvider(baselineGrammar, extendedGrammar)
)

// Provider maps dialects to grammars. The zero value is not usable; build one
// with NewProvider or use Default.
type Provider struct {
	baseline Grammar
	extended Grammar
}

// NewProvider returns a Provider serving the given grammars. It is the
// injection point for substitute grammars in tests.
func NewProvider(baseline, extended Grammar) *Provider {
	return &Provider{
		baseline: baseline,
		extended: extended,
	}
}

// Default returns the provider backed by the bundled C and C++ grammars.
func Default() *Provider { return defaultProvider }

// Select returns the Extended grammar when isExtended is set, the Baseline
// grammar otherwise.
func (p *Provider) Select(isExtended bool) Grammar {
	if isExtended {
		return p.extended
	}

	return p.baseline
}

// For returns the grammar of dialect d.
func (p *Provider) For(d Dialect) Grammar {
	return p.Select(d.IsExtended())
}

// Select returns the bundled grammar for the requested dialect.
func Select(isExtended bool) Grammar {
	return defaultProvider.Select(isExtended)
}

// For returns the bundled grammar of dialect d.
func For(d Dialect) Grammar {
	return defaultProvider.For(d)
}
