// Package mcp implements a Model Context Protocol server exposing tsq's
// parse, find, extract and query operations as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
	"github.com/Sumatoshi-tech/tsq/pkg/observability"
	"github.com/Sumatoshi-tech/tsq/pkg/query"
	"github.com/Sumatoshi-tech/tsq/pkg/version"
)

const (
	serverName = "tsq"
	toolCount  = 4
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Cache holds compiled queries across calls. Nil creates a default cache.
	Cache *query.Cache

	// Grammars resolves dialects to grammars. Nil uses the bundled grammars.
	Grammars *dialect.Provider

	// Dialect is used when a call names none: a dialect name or "auto".
	// Empty means "auto".
	Dialect string
}

// Server wraps the MCP SDK server with tsq tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	logger   *slog.Logger
	metrics  *observability.REDMetrics
	tracer   trace.Tracer
	cache    *query.Cache
	grammars *dialect.Provider
	dialect  string
	tools    []string
	mu       sync.RWMutex
}

// NewServer creates a new MCP server with all tsq tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	srv := &Server{
		inner:    inner,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		cache:    deps.Cache,
		grammars: deps.Grammars,
		dialect:  deps.Dialect,
		tools:    make([]string, 0, toolCount),
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	if srv.cache == nil {
		srv.cache = query.NewCache(config.DefaultQueryCacheSize)
	}

	if srv.grammars == nil {
		srv.grammars = dialect.Default()
	}

	if srv.dialect == "" {
		srv.dialect = config.DialectAuto
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// CacheStats reports the shared query cache counters.
func (s *Server) CacheStats() query.CacheStats { return s.cache.Stats() }

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameParse, parseToolDescription, s.handleParse)
	addTool(s, ToolNameFind, findToolDescription, s.handleFind)
	addTool(s, ToolNameExtract, extractToolDescription, s.handleExtract)
	addTool(s, ToolNameQuery, queryToolDescription, s.handleQuery)
}

type toolHandler[Input any] func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error)

func addTool[Input any](s *Server, name, description string, handler toolHandler[Input]) {
	wrapped := withMetrics(s.metrics, name, withTracing(s.tracer, name, handler))

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, mcpsdk.ToolHandlerFor[Input, ToolOutput](wrapped))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing wraps a tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](tracer trace.Tracer, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if err != nil || (result != nil && result.IsError) {
			span.SetStatus(codes.Error, "tool call failed")
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics, toolName string, handler toolHandler[Input],
) toolHandler[Input] {
	if metrics == nil {
		return handler
	}

	op := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, op)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}

// Tool description constants.
const (
	parseToolDescription = "Parse C or C++ source into a concrete syntax tree. " +
		"Returns the tree as JSON, an S-expression, or an indented outline."

	findToolDescription = "Find nodes of a given kind in C or C++ source by depth-first preorder search. " +
		"Returns the first match, or every match when all is set."

	extractToolDescription = "Extract the source text bound to a grammar field " +
		"of every node of a given kind, e.g. the function of each call_expression."

	queryToolDescription = "Run a tree-sitter S-expression query over C or C++ source " +
		"and return each match with its named captures."
)
