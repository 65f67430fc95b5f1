package syntax_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax/schema"
)

func TestSExpr(t *testing.T) {
	t.Parallel()

	tree := syntax.ParseDialect([]byte("int x;"), dialect.Baseline)
	defer tree.Close()

	assert.Equal(t,
		"(translation_unit (declaration type: (primitive_type) declarator: (identifier)))",
		syntax.SExpr(tree.Root()),
	)
	assert.Empty(t, syntax.SExpr(syntax.Node{}))
}

func TestOutline(t *testing.T) {
	t.Parallel()

	tree := syntax.ParseDialect([]byte("int x;"), dialect.Baseline)
	defer tree.Close()

	assert.Equal(t, []string{
		"translation_unit",
		"  declaration",
		"    type: primitive_type",
		"    declarator: identifier",
	}, syntax.Outline(tree.Root(), syntax.OutlineOptions{}))

	withTokens := syntax.Outline(tree.Root(), syntax.OutlineOptions{Anonymous: true, Ranges: true})
	assert.Equal(t, "translation_unit [0, 6)", withTokens[0])
	assert.Contains(t, withTokens, `    ";" [5, 6)`)
}

func TestDocument_MatchesSchema(t *testing.T) {
	t.Parallel()

	inputs := map[dialect.Dialect]string{
		dialect.Baseline: "int main(void) { @ return 0; }\n",
		dialect.Extended: "namespace n { class A { int x; }; }\n",
	}

	for d, input := range inputs {
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()

			tree := syntax.ParseDialect([]byte(input), d)
			defer tree.Close()

			doc := syntax.NewDocument(tree.Root(), syntax.DocumentOptions{Anonymous: true, MaxTextLen: 16})
			assert.Equal(t, d.String(), doc.Dialect)
			assert.Equal(t, tree.HasError(), doc.HasError)

			data, err := json.Marshal(doc)
			require.NoError(t, err)

			violations, err := schema.Validate(data)
			require.NoError(t, err)
			assert.Empty(t, violations)
		})
	}
}

func TestDocument_LeafText(t *testing.T) {
	t.Parallel()

	source := []byte("int longidentifier;")
	tree := syntax.ParseDialect(source, dialect.Baseline)
	defer tree.Close()

	doc := syntax.NewDocument(tree.Root(), syntax.DocumentOptions{MaxTextLen: 4})
	require.NotNil(t, doc.Root)
	require.Len(t, doc.Root.Children, 1)

	decl := doc.Root.Children[0]
	require.Len(t, decl.Children, 2)
	assert.Equal(t, "declarator", decl.Children[1].Field)
	assert.Equal(t, "long", decl.Children[1].Text)
	assert.Empty(t, decl.Text)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: translation_unit")
}

func TestSchema_RejectsMalformedDocument(t *testing.T) {
	t.Parallel()

	violations, err := schema.Validate([]byte(`{"dialect":"go","grammar":"","has_error":false,"root":{"kind":"x"}}`))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	source := []byte("int x;\nint y;")
	tree := syntax.ParseDialect(source, dialect.Baseline)
	defer tree.Close()

	decls := syntax.FindAll(tree.Root(), "declaration")
	require.Len(t, decls, 2)

	ident, ok := syntax.Find(decls[1], "identifier")
	require.True(t, ok)

	summary := syntax.Summarize(ident, source)
	assert.Equal(t, "identifier", summary.Kind)
	assert.Equal(t, "declarator", summary.Field)
	assert.Equal(t, "y", summary.Text)
	assert.Equal(t, syntax.Point{Row: 1, Column: 4}, summary.Start)
	assert.Equal(t, uint32(11), summary.StartByte)
	assert.Equal(t, uint32(12), summary.EndByte)
}
