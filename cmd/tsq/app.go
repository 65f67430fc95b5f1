package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
	"github.com/Sumatoshi-tech/tsq/pkg/observability"
	"github.com/Sumatoshi-tech/tsq/pkg/query"
	"github.com/Sumatoshi-tech/tsq/pkg/syntax"
)

// errReported marks failures whose diagnostics were already written.
var errReported = errors.New("failure reported")

// app carries the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settings  *config.Config
	providers observability.Providers
	metrics   *observability.REDMetrics
	cache     *query.Cache
	logger    *slog.Logger

	cfgFile     string
	dialectName string
	verbose     bool
	quiet       bool
	noColor     bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.DiscardHandler),
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tsq",
		Short: "Navigate and query C and C++ syntax trees",
		Long: `tsq parses C and C++ sources with tree-sitter, finds nodes by kind,
extracts field text and runs S-expression queries with named captures.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./tsq.yaml or $HOME/.config/tsq/tsq.yaml)")
	flags.StringVarP(&a.dialectName, "dialect", "d", "", "dialect: c, cpp or auto (default from config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress informational output")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(a.parseCmd())
	rootCmd.AddCommand(a.findCmd())
	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.queryCmd())
	rootCmd.AddCommand(a.diffCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.mcpCmd())
	rootCmd.AddCommand(a.versionCmd())
	rootCmd.AddCommand(completionCmd(rootCmd))

	return rootCmd
}

// setup loads configuration and starts observability before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.dialectName != "" {
		if !strings.EqualFold(a.dialectName, config.DialectAuto) {
			if _, parseErr := dialect.Parse(a.dialectName); parseErr != nil {
				return parseErr
			}
		}

		settings.Dialect = a.dialectName
	}

	switch {
	case a.verbose:
		settings.Logging.Level = "debug"
	case a.quiet:
		settings.Logging.Level = "error"
	}

	if a.noColor {
		settings.Output.Color = false
	}

	mode := observability.ModeCLI
	if cmd.Name() == mcpCommandName {
		mode = observability.ModeMCP
	}

	obsCfg := observability.FromSettings(settings, mode)
	obsCfg.LogOutput = a.stderr

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	a.settings = settings
	a.providers = providers
	a.metrics = metrics
	a.logger = providers.Logger
	a.cache = query.NewCache(settings.Query.CacheSize)

	a.logger.Debug("configuration loaded",
		"dialect", settings.Dialect, "output", settings.Output.Format, "config", a.cfgFile)

	return nil
}

// shutdown flushes telemetry. It is a no-op when setup never ran.
func (a *app) shutdown() error {
	if a.providers.Shutdown == nil {
		return nil
	}

	return a.providers.Shutdown(context.Background())
}

// instrument runs fn as a traced, metered operation.
func (a *app) instrument(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return a.metrics.Instrument(ctx, a.providers.Tracer, op, fn)
}

// parseInput reads path ("-" for stdin) and parses it in the configured
// dialect.
func (a *app) parseInput(ctx context.Context, path string) (*syntax.Tree, error) {
	source, name, err := a.readSource(path)
	if err != nil {
		return nil, err
	}

	d, err := a.settings.ResolveDialect(name, source)
	if err != nil {
		return nil, err
	}

	var tree *syntax.Tree

	err = a.instrument(ctx, "tsq.parse", func(context.Context) error {
		tree = syntax.ParseDialect(source, d)

		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.DebugContext(ctx, "parsed source",
		"file", name, "dialect", d.String(), "nodes", tree.Len(), "has_error", tree.HasError())

	if tree.HasError() && !a.quiet {
		a.logger.WarnContext(ctx, "source contains syntax errors", "file", name)
	}

	return tree, nil
}

// outputFormat picks the flag value over the configured default.
func (a *app) outputFormat(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return a.settings.Output.Format
}

// paint returns a color printer honoring the color setting.
func (a *app) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if a.settings == nil || !a.settings.Output.Color {
		c.DisableColor()
	}

	return c
}

// sourceArg returns the optional trailing file argument, defaulting to stdin.
func sourceArg(args []string, index int) string {
	if len(args) > index {
		return args[index]
	}

	return stdinPath
}
