package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	golang "github.com/alexaandru/go-sitter-forest/go"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want dialect.Dialect
	}{
		{"c", dialect.Baseline},
		{"baseline", dialect.Baseline},
		{"  C ", dialect.Baseline},
		{"cpp", dialect.Extended},
		{"C++", dialect.Extended},
		{"extended", dialect.Extended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dialect.Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	t.Parallel()

	_, err := dialect.Parse("rust")
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestDialect_TextRoundTrip(t *testing.T) {
	t.Parallel()

	text, err := dialect.Extended.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "cpp", string(text))

	var d dialect.Dialect

	require.NoError(t, d.UnmarshalText([]byte("c++")))
	assert.Equal(t, dialect.Extended, d)
	require.Error(t, d.UnmarshalText([]byte("cobol")))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	base := dialect.Select(false)
	ext := dialect.Select(true)

	assert.Equal(t, dialect.Baseline, base.Dialect())
	assert.Equal(t, "c", base.Name())
	assert.Equal(t, dialect.Extended, ext.Dialect())
	assert.Equal(t, "cpp", ext.Name())

	require.NotNil(t, base.Language())
	require.NotNil(t, ext.Language())
	assert.NotSame(t, base.Language(), ext.Language())

	// Grammars are process-lifetime: repeated lookups return the same handle.
	assert.Same(t, base.Language(), dialect.Select(false).Language())
	assert.Equal(t, ext, dialect.For(dialect.Extended))
}

func TestProvider_Injected(t *testing.T) {
	t.Parallel()

	fake := dialect.NewGrammar(dialect.Baseline, "go", golang.GetLanguage)
	provider := dialect.NewProvider(fake, dialect.Select(true))

	assert.Equal(t, "go", provider.Select(false).Name())
	assert.Equal(t, "go", provider.For(dialect.Baseline).Name())
	assert.Equal(t, "cpp", provider.For(dialect.Extended).Name())
	assert.NotNil(t, provider.Select(false).Language())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  string
		want     dialect.Dialect
	}{
		{"c source", "main.c", "int main(void) { return 0; }\n", dialect.Baseline},
		{"cpp source", "main.cpp", "int main() { return 0; }\n", dialect.Extended},
		{"cpp header", "vec.hpp", "#pragma once\n", dialect.Extended},
		{"cc source", "x.cc", "", dialect.Extended},
		{
			"cpp content in .h",
			"vec.h",
			"#include <vector>\n\ntemplate <typename T>\nclass Box {\npublic:\n  std::vector<T> items;\n};\n",
			dialect.Extended,
		},
		{"no extension", "Makefile", "all:\n\ttrue\n", dialect.Baseline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, dialect.Detect(tt.filename, []byte(tt.content)))
		})
	}
}
