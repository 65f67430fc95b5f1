package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/syntax/schema"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file.json|-]",
		Short: "Validate a JSON tree document against the tree schema",
		Long: `Check a document produced by "tsq parse -f json" against the embedded
JSON schema. Violations are listed and the command exits with status 1.

Examples:
  tsq parse -f json main.c > tree.json && tsq validate tree.json
  tsq parse -f json main.c | tsq validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), sourceArg(args, 0))
		},
	}
}

func (a *app) runValidate(ctx context.Context, path string) error {
	document, _, err := a.readSource(path)
	if err != nil {
		return err
	}

	var violations []schema.Violation

	err = a.instrument(ctx, "tsq.validate", func(context.Context) error {
		var validateErr error

		violations, validateErr = schema.Validate(document)

		return validateErr
	})
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		if !a.quiet {
			fmt.Fprintf(a.stdout, "%s: %s\n", path, a.paint(colorOK...).Sprint("valid"))
		}

		return nil
	}

	fmt.Fprintf(a.stdout, "%s: %s (%d violations)\n", path, a.paint(colorBad...).Sprint("invalid"), len(violations))

	for _, v := range violations {
		fmt.Fprintf(a.stdout, "  %s: %s\n", v.Field, v.Description)
	}

	return errReported
}
