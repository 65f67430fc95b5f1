package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

const sampleC = `int add(int a, int b) { return a + b; }
int main(void) { return add(1, 2); }
`

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(args, strings.NewReader(stdin), &stdout, &stderr)

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestCLI_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want string
		args []string
	}{
		{want: "tsq parses C and C++ sources", args: []string{"--help"}},
		{want: "concrete syntax tree", args: []string{"parse", "--help"}},
		{want: "depth-first preorder", args: []string{"find", "--help"}},
		{want: "S-expression pattern", args: []string{"query", "--help"}},
		{want: "tree outlines", args: []string{"diff", "--help"}},
		{want: "embedded", args: []string{"validate", "--help"}},
		{want: "Model Context Protocol", args: []string{"mcp", "--help"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, "", tt.args...)
			assert.Equal(t, exitOK, res.code)
			assert.Contains(t, res.stdout, tt.want)
		})
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "frobnicate")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "unknown command")
}

func TestCLI_Version(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "version")
	require.Equal(t, exitOK, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "tsq dev"), res.stdout)
}

func TestCLI_ParseSExpr(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "int x;", "parse", "-f", "sexp", "-")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t,
		"(translation_unit (declaration type: (primitive_type) declarator: (identifier)))\n",
		res.stdout,
	)
}

func TestCLI_ParseOutlineAndStats(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "x.c", "int x;")

	res := runCLI(t, "", "--no-color", "parse", "--stats", path)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "translation_unit [0, 6)")
	assert.Contains(t, res.stdout, "declarator: identifier")
	assert.Contains(t, res.stderr, "c, 5 nodes")
	assert.Contains(t, res.stderr, "ok")
}

func TestCLI_ParseJSON(t *testing.T) {
	t.Parallel()

	res := runCLI(t, sampleC, "parse", "-f", "json", "-")
	require.Equal(t, exitOK, res.code, res.stderr)

	var doc syntax.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "c", doc.Dialect)
	assert.False(t, doc.HasError)
	require.NotNil(t, doc.Root)
	assert.Equal(t, "translation_unit", doc.Root.Kind)
}

func TestCLI_ParseAndValidate(t *testing.T) {
	t.Parallel()

	parsed := runCLI(t, sampleC, "parse", "-f", "json", "-")
	require.Equal(t, exitOK, parsed.code)

	res := runCLI(t, parsed.stdout, "validate")
	require.Equal(t, exitOK, res.code, res.stdout)
	assert.Contains(t, res.stdout, "valid")

	bad := writeTemp(t, "bad.json", `{"dialect":"go","root":{"kind":"x"}}`)

	res = runCLI(t, "", "validate", bad)
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stdout, "invalid")
	assert.NotContains(t, res.stderr, "Error:")
}

func TestCLI_Find(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "sample.c", sampleC)

	res := runCLI(t, "", "find", "function_definition", path)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "function_definition")
	assert.Contains(t, res.stdout, "1:1-1:40")
	assert.NotContains(t, res.stdout, "2:1")

	res = runCLI(t, "", "find", "--all", "-f", "json", "function_definition", path)
	require.Equal(t, exitOK, res.code, res.stderr)

	var summaries []syntax.Summary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, uint32(1), summaries[1].Start.Row)
}

func TestCLI_FindMissing(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "int x;", "find", "class_specifier")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "not found")
}

func TestCLI_Extract(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "void g(void) { f(a); h(b); }", "extract", "call_expression", "function")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "f\nh\n", res.stdout)
}

func TestCLI_Query(t *testing.T) {
	t.Parallel()

	pattern := "(function_definition declarator: (function_declarator declarator: (identifier) @name))"

	res := runCLI(t, sampleC, "query", "-f", "json", pattern)
	require.Equal(t, exitOK, res.code, res.stderr)

	var views []matchView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "name", views[0].Captures[0].Name)
	assert.Equal(t, "add", views[0].Captures[0].Node.Text)
	assert.Equal(t, "main", views[1].Captures[0].Node.Text)

	res = runCLI(t, sampleC, "query", "--count", pattern)
	require.Equal(t, exitOK, res.code)
	assert.Equal(t, "2\n", res.stdout)

	res = runCLI(t, sampleC, "--no-color", "query", pattern)
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "@name")
}

func TestCLI_QueryPatternFile(t *testing.T) {
	t.Parallel()

	patternPath := writeTemp(t, "calls.scm", "(call_expression function: (identifier) @fn)\n")
	sourcePath := writeTemp(t, "sample.c", sampleC)

	res := runCLI(t, "", "query", "--count", "--pattern-file", patternPath, sourcePath)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "1\n", res.stdout)

	res = runCLI(t, "", "query", "--pattern-file", patternPath, "(x)", sourcePath)
	assert.Equal(t, exitFailure, res.code)
}

func TestCLI_QueryCompileFailure(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "int x;", "query", "(no_such_node) @x")
	assert.Equal(t, exitFailure, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "tree-sitter query generation failed: NodeType")
	assert.Contains(t, res.stderr, "sexpr: (no_such_node) @x")
	assert.NotContains(t, res.stderr, "Error:")
}

func TestCLI_QueryDialect(t *testing.T) {
	t.Parallel()

	source := "class A { int x; };"
	pattern := "(class_specifier name: (type_identifier) @name)"

	res := runCLI(t, source, "-d", "cpp", "query", "--count", pattern)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "1\n", res.stdout)

	// The C grammar has no class_specifier node.
	res = runCLI(t, source, "-d", "c", "query", pattern)
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "NodeType")

	res = runCLI(t, source, "-d", "pascal", "query", pattern)
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "unknown dialect")
}

func TestCLI_AutoDialect(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "widget.cpp", "namespace n { class A {}; }\n")

	res := runCLI(t, "", "-d", "auto", "find", "class_specifier", path)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "class_specifier")
}

func TestCLI_ConfigFile(t *testing.T) {
	t.Parallel()

	cfg := writeTemp(t, "tsq.yaml", "dialect: cpp\noutput:\n  format: json\n")

	res := runCLI(t, "class A {};", "--config", cfg, "find", "class_specifier")
	require.Equal(t, exitOK, res.code, res.stderr)

	var summaries []syntax.Summary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summaries))
	require.Len(t, summaries, 1)

	res = runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "load config")
}

func TestCLI_Diff(t *testing.T) {
	t.Parallel()

	oldPath := writeTemp(t, "old.c", "int x;\n")
	movedPath := writeTemp(t, "moved.c", "\n\n  int   y ;\n")
	newPath := writeTemp(t, "new.c", "int x;\nint f(void) { return 0; }\n")

	res := runCLI(t, "", "diff", "--exit-code", oldPath, movedPath)
	require.Equal(t, exitOK, res.code, res.stdout)
	assert.Equal(t, 1, strings.Count(res.stdout, "\n+"), res.stdout)

	res = runCLI(t, "", "--no-color", "diff", oldPath, newPath)
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "+  function_definition")
	assert.Contains(t, res.stdout, " translation_unit")

	res = runCLI(t, "", "diff", "--exit-code", oldPath, newPath)
	assert.Equal(t, exitFailure, res.code)
}

func TestCLI_Completion(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "completion", "bash")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "tsq")

	res = runCLI(t, "", "completion", "tcsh")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "unsupported shell")
}
