// Package main provides the tsq CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/tsq/pkg/query"
)

const (
	exitOK      = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. Only
// main turns it into an exit.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli := newApp(stdin, stdout, stderr)

	rootCmd := cli.rootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	if shutdownErr := cli.shutdown(); shutdownErr != nil {
		cli.logger.Warn("telemetry shutdown failed", "error", shutdownErr)
	}

	if err == nil {
		return exitOK
	}

	var compileErr *query.CompileError
	if errors.As(err, &compileErr) {
		compileErr.Report(stderr)

		return exitFailure
	}

	if !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	return exitFailure
}
