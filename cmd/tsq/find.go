package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// ErrNotFound is returned when no node of the requested kind exists.
var ErrNotFound = errors.New("not found")

func (a *app) findCmd() *cobra.Command {
	var format string

	var all bool

	cmd := &cobra.Command{
		Use:   "find <kind> [file|-]",
		Short: "Find nodes of a kind by preorder search",
		Long: `Find the first node of the given kind in depth-first preorder, or every
node of that kind with --all. Exits with status 1 when nothing is found.

Examples:
  tsq find function_definition main.c
  tsq find --all identifier main.c
  tsq find -d cpp -f json class_specifier widget.h`,
		Args: cobra.RangeArgs(1, 2), //nolint:mnd // kind plus optional file
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd.Context(), args[0], sourceArg(args, 1), format, all)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&all, "all", false, "print every match instead of the first")

	return cmd
}

func (a *app) runFind(ctx context.Context, kind, path, format string, all bool) error {
	tree, err := a.parseInput(ctx, path)
	if err != nil {
		return err
	}
	defer tree.Close()

	var found []syntax.Node

	err = a.instrument(ctx, "tsq.find", func(context.Context) error {
		if all {
			found = syntax.FindAll(tree.Root(), kind)
		} else if n, ok := syntax.Find(tree.Root(), kind); ok {
			found = []syntax.Node{n}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(found) == 0 {
		return fmt.Errorf("%w: no %s node in %s", ErrNotFound, kind, path)
	}

	summaries := make([]syntax.Summary, 0, len(found))
	for _, n := range found {
		summaries = append(summaries, syntax.Summarize(n, tree.Source()))
	}

	format = a.outputFormat(format)
	if format != config.OutputText {
		return writeStructured(a.stdout, format, summaries)
	}

	tw := newTable(a.stdout, table.Row{"#", "Kind", "Field", "Range", "Text"})
	for i, s := range summaries {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), s.Kind, s.Field, formatRange(s), cellText(s.Text)})
	}

	tw.Render()

	return nil
}

func (a *app) extractCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract <kind> <field> [file|-]",
		Short: "Print the text bound to a field of every node of a kind",
		Long: `Print, for every node of the given kind in preorder, the source text of its
direct child bound to the given grammar field. Nodes without the field
print an empty line.

Examples:
  tsq extract call_expression function main.c
  tsq extract function_definition type -f json main.c`,
		Args: cobra.RangeArgs(2, 3), //nolint:mnd // kind, field, optional file
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd.Context(), args[0], args[1], sourceArg(args, 2), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (text, json, yaml)")

	return cmd
}

func (a *app) runExtract(ctx context.Context, kind, field, path, format string) error {
	tree, err := a.parseInput(ctx, path)
	if err != nil {
		return err
	}
	defer tree.Close()

	var values []string

	err = a.instrument(ctx, "tsq.extract", func(context.Context) error {
		for _, n := range syntax.FindAll(tree.Root(), kind) {
			values = append(values, syntax.FieldText(n, field, tree.Source()))
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(values) == 0 {
		return fmt.Errorf("%w: no %s node in %s", ErrNotFound, kind, path)
	}

	format = a.outputFormat(format)
	if format != config.OutputText {
		return writeStructured(a.stdout, format, values)
	}

	for _, v := range values {
		fmt.Fprintln(a.stdout, v)
	}

	return nil
}
