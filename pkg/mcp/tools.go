package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
	"github.com/Sumatoshi-tech/tsq/pkg/query"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// Tool name constants.
const (
	ToolNameParse   = "tsq_parse"
	ToolNameFind    = "tsq_find"
	ToolNameExtract = "tsq_extract"
	ToolNameQuery   = "tsq_query"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Parse output formats.
const (
	FormatJSON    = "json"
	FormatSExpr   = "sexp"
	FormatOutline = "outline"
)

// defaultFilename stands in for calls that give no filename.
const defaultFilename = "input.c"

// Sentinel errors for tool input validation.
var (
	ErrEmptyCode     = errors.New("code parameter is required and must not be empty")
	ErrCodeTooLarge  = errors.New("code input exceeds maximum size")
	ErrEmptyKind     = errors.New("kind parameter is required and must not be empty")
	ErrEmptyField    = errors.New("field parameter is required and must not be empty")
	ErrEmptyPattern  = errors.New("pattern parameter is required and must not be empty")
	ErrUnknownFormat = errors.New("unknown format")
)

// Input types (JSON schemas are generated from the struct tags).

// sourceInput names the code to parse and how to pick its dialect.
type sourceInput struct {
	Code     string
	Dialect  string
	Filename string
}

// ParseInput is the input schema for the tsq_parse tool.
type ParseInput struct {
	Code      string `json:"code"                jsonschema:"C or C++ source code"`
	Dialect   string `json:"dialect,omitempty"   jsonschema:"c, cpp or auto (default: server setting)"`
	Filename  string `json:"filename,omitempty"  jsonschema:"file name used for dialect detection, e.g. widget.hpp"`
	Format    string `json:"format,omitempty"    jsonschema:"json, sexp or outline (default: json)"`
	Anonymous bool   `json:"anonymous,omitempty" jsonschema:"include punctuation and keyword tokens"`
}

// FindInput is the input schema for the tsq_find tool.
type FindInput struct {
	Code     string `json:"code"               jsonschema:"C or C++ source code"`
	Dialect  string `json:"dialect,omitempty"  jsonschema:"c, cpp or auto (default: server setting)"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used for dialect detection, e.g. widget.hpp"`
	Kind     string `json:"kind"               jsonschema:"node kind to search for, e.g. function_definition"`
	All      bool   `json:"all,omitempty"      jsonschema:"return every match instead of the first"`
}

// ExtractInput is the input schema for the tsq_extract tool.
type ExtractInput struct {
	Code     string `json:"code"               jsonschema:"C or C++ source code"`
	Dialect  string `json:"dialect,omitempty"  jsonschema:"c, cpp or auto (default: server setting)"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used for dialect detection, e.g. widget.hpp"`
	Kind     string `json:"kind"               jsonschema:"node kind whose field is read, e.g. call_expression"`
	Field    string `json:"field"              jsonschema:"grammar field name, e.g. function"`
}

// QueryInput is the input schema for the tsq_query tool.
type QueryInput struct {
	Code     string `json:"code"               jsonschema:"C or C++ source code"`
	Dialect  string `json:"dialect,omitempty"  jsonschema:"c, cpp or auto (default: server setting)"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used for dialect detection, e.g. widget.hpp"`
	Pattern  string `json:"pattern"            jsonschema:"tree-sitter S-expression query with @captures"`
}

func (in ParseInput) source() sourceInput   { return sourceInput{in.Code, in.Dialect, in.Filename} }
func (in FindInput) source() sourceInput    { return sourceInput{in.Code, in.Dialect, in.Filename} }
func (in ExtractInput) source() sourceInput { return sourceInput{in.Code, in.Dialect, in.Filename} }
func (in QueryInput) source() sourceInput   { return sourceInput{in.Code, in.Dialect, in.Filename} }

// Output types.

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// FindResult lists found nodes in preorder.
type FindResult struct {
	Dialect string           `json:"dialect"`
	Nodes   []syntax.Summary `json:"nodes"`
}

// ExtractResult lists the field text of every node of the requested kind.
// Nodes without the field contribute an empty string.
type ExtractResult struct {
	Dialect string   `json:"dialect"`
	Values  []string `json:"values"`
}

// CaptureView is one capture of a match.
type CaptureView struct {
	Name string         `json:"name"`
	Node syntax.Summary `json:"node"`
}

// MatchView is one query match.
type MatchView struct {
	Captures []CaptureView `json:"captures"`
	Pattern  int           `json:"pattern"`
}

// QueryResult lists query matches in document order.
type QueryResult struct {
	Dialect  string      `json:"dialect"`
	Captures []string    `json:"captures"`
	Matches  []MatchView `json:"matches"`
}

func (s *Server) handleParse(
	_ context.Context, _ *mcpsdk.CallToolRequest, input ParseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	tree, err := s.parseSource(input.source())
	if err != nil {
		return errorResult(err)
	}
	defer tree.Close()

	switch input.Format {
	case "", FormatJSON:
		return jsonResult(syntax.NewDocument(tree.Root(), syntax.DocumentOptions{
			Anonymous:  input.Anonymous,
			MaxTextLen: maxLeafText,
		}))
	case FormatSExpr:
		return textResult(syntax.SExpr(tree.Root()))
	case FormatOutline:
		lines := syntax.Outline(tree.Root(), syntax.OutlineOptions{Anonymous: input.Anonymous, Ranges: true})

		return textResult(strings.Join(lines, "\n"))
	default:
		return errorResult(fmt.Errorf("%w: %q", ErrUnknownFormat, input.Format))
	}
}

// maxLeafText caps leaf text in JSON trees.
const maxLeafText = 256

func (s *Server) handleFind(
	_ context.Context, _ *mcpsdk.CallToolRequest, input FindInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Kind == "" {
		return errorResult(ErrEmptyKind)
	}

	tree, err := s.parseSource(input.source())
	if err != nil {
		return errorResult(err)
	}
	defer tree.Close()

	var found []syntax.Node

	if input.All {
		found = syntax.FindAll(tree.Root(), input.Kind)
	} else if n, ok := syntax.Find(tree.Root(), input.Kind); ok {
		found = []syntax.Node{n}
	}

	result := FindResult{
		Dialect: tree.Dialect().String(),
		Nodes:   make([]syntax.Summary, 0, len(found)),
	}

	for _, n := range found {
		result.Nodes = append(result.Nodes, syntax.Summarize(n, tree.Source()))
	}

	return jsonResult(result)
}

func (s *Server) handleExtract(
	_ context.Context, _ *mcpsdk.CallToolRequest, input ExtractInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Kind == "" {
		return errorResult(ErrEmptyKind)
	}

	if input.Field == "" {
		return errorResult(ErrEmptyField)
	}

	tree, err := s.parseSource(input.source())
	if err != nil {
		return errorResult(err)
	}
	defer tree.Close()

	nodes := syntax.FindAll(tree.Root(), input.Kind)
	result := ExtractResult{
		Dialect: tree.Dialect().String(),
		Values:  make([]string, 0, len(nodes)),
	}

	for _, n := range nodes {
		result.Values = append(result.Values, syntax.FieldText(n, input.Field, tree.Source()))
	}

	return jsonResult(result)
}

func (s *Server) handleQuery(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input QueryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Pattern == "" {
		return errorResult(ErrEmptyPattern)
	}

	tree, err := s.parseSource(input.source())
	if err != nil {
		return errorResult(err)
	}
	defer tree.Close()

	q, err := s.cache.Compile(input.Pattern, tree.Grammar())
	if err != nil {
		var compileErr *query.CompileError
		if errors.As(err, &compileErr) {
			s.logger.WarnContext(ctx, "query compilation failed",
				"dialect", compileErr.Dialect.String(), "kind", compileErr.Kind.String())

			var report strings.Builder
			compileErr.Report(&report)

			return errorResult(errors.New(report.String()))
		}

		return errorResult(err)
	}

	matches, err := q.Matches(tree)
	if err != nil {
		return errorResult(err)
	}

	result := QueryResult{
		Dialect:  tree.Dialect().String(),
		Captures: q.CaptureNames(),
		Matches:  make([]MatchView, 0, len(matches)),
	}

	for _, m := range matches {
		view := MatchView{Pattern: m.Pattern, Captures: make([]CaptureView, 0, len(m.Captures))}

		for _, c := range m.Captures {
			view.Captures = append(view.Captures, CaptureView{
				Name: c.Name,
				Node: syntax.Summarize(c.Node, tree.Source()),
			})
		}

		result.Matches = append(result.Matches, view)
	}

	return jsonResult(result)
}

// parseSource validates the code input and parses it in the resolved dialect.
func (s *Server) parseSource(input sourceInput) (*syntax.Tree, error) {
	if input.Code == "" {
		return nil, ErrEmptyCode
	}

	if len(input.Code) > MaxCodeInputBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(input.Code), MaxCodeInputBytes)
	}

	source := []byte(input.Code)

	d, err := s.resolveDialect(input, source)
	if err != nil {
		return nil, err
	}

	return syntax.Parse(source, s.grammars.For(d)), nil
}

func (s *Server) resolveDialect(input sourceInput, source []byte) (dialect.Dialect, error) {
	name := input.Dialect
	if name == "" {
		name = s.dialect
	}

	if strings.EqualFold(name, config.DialectAuto) {
		filename := input.Filename
		if filename == "" {
			filename = defaultFilename
		}

		return dialect.Detect(filename, source), nil
	}

	d, err := dialect.Parse(name)
	if err != nil {
		return d, fmt.Errorf("resolve dialect: %w", err)
	}

	return d, nil
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func textResult(text string) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: text}, nil
}
