package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// Tree-only output formats, in addition to the config formats.
const (
	formatSExpr   = "sexp"
	formatOutline = "outline"
)

// maxCellText truncates node text in table cells.
const maxCellText = 60

//nolint:gochecknoglobals // fixed palettes.
var (
	colorOK      = []color.Attribute{color.FgGreen}
	colorBad     = []color.Attribute{color.FgRed}
	colorWarn    = []color.Attribute{color.FgYellow}
	colorCapture = []color.Attribute{color.FgCyan, color.Bold}
)

// ErrUnsupportedFormat is returned for an unknown --format value.
var ErrUnsupportedFormat = errors.New("unsupported format")

// writeStructured encodes value as JSON or YAML.
func writeStructured(w io.Writer, format string, value any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// newTable returns a table writer in the house style.
func newTable(w io.Writer, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)

	return tw
}

func formatRange(s syntax.Summary) string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Row+1, s.Start.Column+1, s.End.Row+1, s.End.Column+1)
}

func cellText(text string) string {
	text = sanitizeForTerminal(text)
	if len(text) > maxCellText {
		return text[:maxCellText-3] + "..."
	}

	return text
}
