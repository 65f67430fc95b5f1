package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

type diffOptions struct {
	anonymous bool
	exitCode  bool
}

func (a *app) diffCmd() *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare the syntax trees of two sources",
		Long: `Parse both sources and print a line diff of their tree outlines. Byte
ranges are left out so that moving code without changing its structure
produces no difference.

Examples:
  tsq diff before.c after.c
  tsq diff --exit-code -a old.cpp new.cpp`,
		Args: cobra.ExactArgs(2), //nolint:mnd // old and new
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.anonymous, "anonymous", "a", false, "include punctuation and keyword tokens")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with status 1 when the trees differ")

	return cmd
}

func (a *app) runDiff(ctx context.Context, oldPath, newPath string, opts diffOptions) error {
	oldOutline, err := a.outlineOf(ctx, oldPath, opts.anonymous)
	if err != nil {
		return err
	}

	newOutline, err := a.outlineOf(ctx, newPath, opts.anonymous)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldOutline, newOutline)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	added := a.paint(colorOK...)
	removed := a.paint(colorBad...)
	changed := false

	fmt.Fprintf(a.stdout, "--- %s\n+++ %s\n", oldPath, newPath)

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				changed = true

				fmt.Fprintln(a.stdout, added.Sprint("+"+line))
			case diffmatchpatch.DiffDelete:
				changed = true

				fmt.Fprintln(a.stdout, removed.Sprint("-"+line))
			case diffmatchpatch.DiffEqual:
				fmt.Fprintln(a.stdout, " "+line)
			}
		}
	}

	if changed && opts.exitCode {
		return errReported
	}

	return nil
}

func (a *app) outlineOf(ctx context.Context, path string, anonymous bool) (string, error) {
	tree, err := a.parseInput(ctx, path)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	lines := syntax.Outline(tree.Root(), syntax.OutlineOptions{Anonymous: anonymous})

	return strings.Join(lines, "\n") + "\n", nil
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}
