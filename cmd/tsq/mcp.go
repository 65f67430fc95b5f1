package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsq/pkg/mcp"
	"github.com/Sumatoshi-tech/tsq/pkg/observability"
)

const mcpCommandName = "mcp"

const metricsShutdownTimeout = 5 * time.Second

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   mcpCommandName,
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the syntax tools to AI agents:
  - tsq_parse: parse C or C++ source into an S-expression, outline or JSON tree
  - tsq_find: find nodes of a kind in preorder
  - tsq_extract: extract field text from every node of a kind
  - tsq_query: run an S-expression query with named captures

Set observability.metrics_addr (TSQ_OBSERVABILITY_METRICS_ADDR) to also serve
Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMCP(cmd.Context())
		},
	}
}

func (a *app) runMCP(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := a.settings.Observability.MetricsAddr; addr != "" && a.providers.MetricsHandler != nil {
		metricsServer, err := observability.StartMetricsServer(addr, a.providers.MetricsHandler, a.logger)
		if err != nil {
			return err
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()

			if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
				a.logger.Warn("metrics server shutdown failed", "error", shutdownErr)
			}
		}()
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:  a.logger,
		Metrics: a.metrics,
		Tracer:  a.providers.Tracer,
		Cache:   a.cache,
		Dialect: a.settings.Dialect,
	})

	a.logger.InfoContext(ctx, "starting MCP server", "tools", srv.ListToolNames(), "dialect", a.settings.Dialect)

	return srv.Run(ctx)
}
