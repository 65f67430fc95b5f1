package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

const defaultMaxText = 80

type parseOptions struct {
	format    string
	maxText   int
	anonymous bool
	ranges    bool
	stats     bool
}

func (a *app) parseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a source file and print its syntax tree",
		Long: `Parse a C or C++ source file and print its concrete syntax tree.

Examples:
  tsq parse main.c                     # Indented outline
  tsq parse -f sexp main.c             # S-expression
  tsq parse -f json --anonymous a.cpp  # JSON tree including tokens
  cat main.c | tsq parse -             # Parse from stdin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd.Context(), sourceArg(args, 0), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (text, outline, sexp, json, yaml)")
	cmd.Flags().BoolVarP(&opts.anonymous, "anonymous", "a", false, "include punctuation and keyword tokens")
	cmd.Flags().BoolVar(&opts.ranges, "ranges", true, "show byte ranges in text output")
	cmd.Flags().IntVar(&opts.maxText, "max-text", defaultMaxText, "maximum leaf text length in json/yaml output")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print a one-line summary to stderr")

	return cmd
}

func (a *app) runParse(ctx context.Context, path string, opts parseOptions) error {
	tree, err := a.parseInput(ctx, path)
	if err != nil {
		return err
	}
	defer tree.Close()

	if opts.stats && !a.quiet {
		a.printStats(a.stderr, path, tree)
	}

	switch format := a.outputFormat(opts.format); format {
	case config.OutputText, formatOutline:
		lines := syntax.Outline(tree.Root(), syntax.OutlineOptions{Anonymous: opts.anonymous, Ranges: opts.ranges})
		fmt.Fprintln(a.stdout, strings.Join(lines, "\n"))

		return nil
	case formatSExpr:
		fmt.Fprintln(a.stdout, syntax.SExpr(tree.Root()))

		return nil
	default:
		doc := syntax.NewDocument(tree.Root(), syntax.DocumentOptions{
			Anonymous:  opts.anonymous,
			MaxTextLen: opts.maxText,
		})

		return writeStructured(a.stdout, format, doc)
	}
}

func (a *app) printStats(w io.Writer, path string, tree *syntax.Tree) {
	status := a.paint(colorOK...).Sprint("ok")
	if tree.HasError() {
		status = a.paint(colorBad...).Sprint("syntax errors")
	}

	fmt.Fprintf(w, "%s: %s, %s nodes, %s, %s\n",
		path,
		tree.Dialect(),
		humanize.Comma(int64(tree.Len())),
		humanize.Bytes(uint64(len(tree.Source()))),
		status,
	)
}
