package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrUnsupportedShell is returned when an unsupported shell is specified.
var ErrUnsupportedShell = errors.New("unsupported shell")

func completionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tsq.

Examples:
  tsq completion bash > /etc/bash_completion.d/tsq
  tsq completion zsh  > "${fpath[1]}/_tsq"
  tsq completion fish > ~/.config/fish/completions/tsq.fish`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		// Completion output must not depend on a readable config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(root, cmd, args[0])
		},
	}
}

func runCompletion(root, cmd *cobra.Command, shell string) error {
	out := cmd.OutOrStdout()

	var err error

	switch shell {
	case "bash":
		err = root.GenBashCompletion(out)
	case "zsh":
		err = root.GenZshCompletion(out)
	case "fish":
		err = root.GenFishCompletion(out, true)
	case "powershell":
		err = root.GenPowerShellCompletion(out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShell, shell)
	}

	if err != nil {
		return fmt.Errorf("failed to generate %s completion: %w", shell, err)
	}

	return nil
}
