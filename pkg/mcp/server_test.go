package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/tsq/pkg/mcp"
	"github.com/Sumatoshi-tech/tsq/pkg/observability"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax/schema"
)

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func callTool(
	ctx context.Context, t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any,
) (*mcpsdk.CallToolResult, string) {
	t.Helper()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return result, text.Text
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{"tsq_extract", "tsq_find", "tsq_parse", "tsq_query"}, srv.ListToolNames())

	ctx, session := connect(t, srv)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 4)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
}

func TestServer_Parse(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, text := callTool(ctx, t, session, mcp.ToolNameParse, map[string]any{
		"code":    "int x;",
		"dialect": "c",
		"format":  "sexp",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "(translation_unit (declaration type: (primitive_type) declarator: (identifier)))", text)

	result, text = callTool(ctx, t, session, mcp.ToolNameParse, map[string]any{
		"code":     "namespace n { int v; }",
		"filename": "n.cpp",
	})
	require.False(t, result.IsError)

	violations, err := schema.Validate([]byte(text))
	require.NoError(t, err)
	assert.Empty(t, violations)

	var doc struct {
		Dialect string `json:"dialect"`
	}

	require.NoError(t, json.Unmarshal([]byte(text), &doc))
	assert.Equal(t, "cpp", doc.Dialect)

	result, _ = callTool(ctx, t, session, mcp.ToolNameParse, map[string]any{
		"code":   "int x;",
		"format": "xml",
	})
	assert.True(t, result.IsError)
}

func TestServer_Find(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Dialect: "c"}))

	result, text := callTool(ctx, t, session, mcp.ToolNameFind, map[string]any{
		"code": "int f(){int x;}",
		"kind": "identifier",
		"all":  true,
	})
	require.False(t, result.IsError)

	var found mcp.FindResult

	require.NoError(t, json.Unmarshal([]byte(text), &found))
	assert.Equal(t, "c", found.Dialect)
	require.Len(t, found.Nodes, 2)
	assert.Equal(t, "f", found.Nodes[0].Text)
	assert.Equal(t, "x", found.Nodes[1].Text)

	result, text = callTool(ctx, t, session, mcp.ToolNameFind, map[string]any{
		"code": "int f(){int x;}",
		"kind": "class_specifier",
	})
	require.False(t, result.IsError)
	require.NoError(t, json.Unmarshal([]byte(text), &found))
	assert.Empty(t, found.Nodes)
}

func TestServer_Extract(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, text := callTool(ctx, t, session, mcp.ToolNameExtract, map[string]any{
		"code":    "void g(void) { f(a,b); h(); }",
		"dialect": "baseline",
		"kind":    "call_expression",
		"field":   "function",
	})
	require.False(t, result.IsError)

	var extracted mcp.ExtractResult

	require.NoError(t, json.Unmarshal([]byte(text), &extracted))
	assert.Equal(t, []string{"f", "h"}, extracted.Values)

	result, _ = callTool(ctx, t, session, mcp.ToolNameExtract, map[string]any{
		"code":  "void g(void) { f(a,b); }",
		"kind":  "call_expression",
		"field": "",
	})
	assert.True(t, result.IsError)
}

func TestServer_Query(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	ctx, session := connect(t, srv)

	args := map[string]any{
		"code":     "class A { void m() {} };\nint main() { return 0; }\n",
		"filename": "a.cpp",
		"pattern":  "(class_specifier name: (type_identifier) @class)",
	}

	result, text := callTool(ctx, t, session, mcp.ToolNameQuery, args)
	require.False(t, result.IsError, text)

	var matched mcp.QueryResult

	require.NoError(t, json.Unmarshal([]byte(text), &matched))
	assert.Equal(t, "cpp", matched.Dialect)
	assert.Equal(t, []string{"class"}, matched.Captures)
	require.Len(t, matched.Matches, 1)
	assert.Equal(t, "A", matched.Matches[0].Captures[0].Node.Text)

	_, _ = callTool(ctx, t, session, mcp.ToolNameQuery, args)

	stats := srv.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestServer_QueryCompileError(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, text := callTool(ctx, t, session, mcp.ToolNameQuery, map[string]any{
		"code":    "int main(void) { return 0; }",
		"dialect": "c",
		"pattern": "(class_specifier) @class",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, text, "NodeType")
	assert.Contains(t, text, "(class_specifier) @class")
}

func TestServer_InputValidation(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"empty code", mcp.ToolNameParse, map[string]any{"code": ""}},
		{"unknown dialect", mcp.ToolNameParse, map[string]any{"code": "int x;", "dialect": "rust"}},
		{"empty kind", mcp.ToolNameFind, map[string]any{"code": "int x;", "kind": ""}},
		{"empty pattern", mcp.ToolNameQuery, map[string]any{"code": "int x;", "pattern": ""}},
	}

	for _, tt := range tests {
		result, _ := callTool(ctx, t, session, tt.tool, tt.args)
		assert.True(t, result.IsError, tt.name)
	}
}

func TestServer_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Metrics: red}))

	callTool(ctx, t, session, mcp.ToolNameFind, map[string]any{"code": "int x;", "kind": "identifier"})
	callTool(ctx, t, session, mcp.ToolNameFind, map[string]any{"code": "", "kind": "identifier"})

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	var requests, errs int64

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "tsq.requests.total":
					requests += dp.Value
				case "tsq.errors.total":
					errs += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), requests)
	assert.Equal(t, int64(1), errs)
}
