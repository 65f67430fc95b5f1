package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/query"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// ErrPatternSource is returned when a pattern is given both inline and by file.
var ErrPatternSource = errors.New("give the pattern either as an argument or with --pattern-file")

type queryOptions struct {
	format      string
	patternFile string
	count       bool
}

// matchView is the structured form of one query match.
type matchView struct {
	Captures []captureView `json:"captures" yaml:"captures"`
	Pattern  int           `json:"pattern"  yaml:"pattern"`
}

type captureView struct {
	Name string         `json:"name" yaml:"name"`
	Node syntax.Summary `json:"node" yaml:"node"`
}

func (a *app) queryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <pattern> [file|-]",
		Short: "Run a tree-sitter S-expression query",
		Long: `Compile an S-expression pattern for the source dialect and print every
match with its named captures. A pattern that does not compile is reported
with its error kind and offset and the command exits with status 1.

Examples:
  tsq query '(call_expression function: (identifier) @fn)' main.c
  tsq query --pattern-file calls.scm -f json main.c
  tsq query -d cpp '(class_specifier name: (type_identifier) @name)' a.h`,
		Args: cobra.RangeArgs(1, 2), //nolint:mnd // pattern plus optional file
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, path, err := a.patternArgs(args, opts.patternFile)
			if err != nil {
				return err
			}

			return a.runQuery(cmd.Context(), pattern, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (text, json, yaml)")
	cmd.Flags().StringVarP(&opts.patternFile, "pattern-file", "p", "", "read the pattern from a file")
	cmd.Flags().BoolVarP(&opts.count, "count", "c", false, "print only the number of matches")

	return cmd
}

// patternArgs splits the positional arguments. With --pattern-file the only
// positional argument is the source.
func (a *app) patternArgs(args []string, patternFile string) (pattern, path string, err error) {
	if patternFile == "" {
		return args[0], sourceArg(args, 1), nil
	}

	if len(args) > 1 {
		return "", "", ErrPatternSource
	}

	content, _, err := safeReadFile(patternFile)
	if err != nil {
		return "", "", err
	}

	return string(content), args[0], nil
}

func (a *app) runQuery(ctx context.Context, pattern, path string, opts queryOptions) error {
	tree, err := a.parseInput(ctx, path)
	if err != nil {
		return err
	}
	defer tree.Close()

	var matches []query.Match

	err = a.instrument(ctx, "tsq.query", func(context.Context) error {
		q, compileErr := a.cache.Compile(pattern, tree.Grammar())
		if compileErr != nil {
			return compileErr
		}

		matches, compileErr = q.Matches(tree)

		return compileErr
	})
	if err != nil {
		return err
	}

	a.logger.DebugContext(ctx, "query executed", "matches", len(matches), "cache", a.cache.Stats())

	if opts.count {
		fmt.Fprintln(a.stdout, len(matches))

		return nil
	}

	views := toMatchViews(matches, tree.Source())

	format := a.outputFormat(opts.format)
	if format != config.OutputText {
		return writeStructured(a.stdout, format, views)
	}

	if len(views) == 0 {
		if !a.quiet {
			fmt.Fprintln(a.stderr, a.paint(colorWarn...).Sprint("no matches"))
		}

		return nil
	}

	a.renderMatches(views)

	return nil
}

func toMatchViews(matches []query.Match, source []byte) []matchView {
	views := make([]matchView, 0, len(matches))

	for _, m := range matches {
		view := matchView{Pattern: m.Pattern, Captures: make([]captureView, 0, len(m.Captures))}
		for _, c := range m.Captures {
			view.Captures = append(view.Captures, captureView{Name: c.Name, Node: syntax.Summarize(c.Node, source)})
		}

		views = append(views, view)
	}

	return views
}

func (a *app) renderMatches(views []matchView) {
	capture := a.paint(colorCapture...)
	tw := newTable(a.stdout, table.Row{"Match", "Capture", "Kind", "Range", "Text"})

	for i, view := range views {
		for _, c := range view.Captures {
			tw.AppendRow(table.Row{
				strconv.Itoa(i + 1),
				capture.Sprint("@" + c.Name),
				c.Node.Kind,
				formatRange(c.Node),
				cellText(strings.TrimSpace(c.Node.Text)),
			})
		}

		tw.AppendSeparator()
	}

	tw.Render()
}
