// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the tsq command line and MCP server.
package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/version"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the one-shot command mode.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "tsq"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	// Zero samples every root span.
	SampleRatio float64

	LogLevel           slog.Level
	ShutdownTimeoutSec int

	OTLPInsecure bool
	LogJSON      bool

	// Prometheus attaches a Prometheus reader to the meter provider and
	// exposes its scrape handler in Providers.MetricsHandler.
	Prometheus bool
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		ServiceVersion:     version.Version,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelWarn,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// FromSettings derives the observability config from loaded tsq settings.
func FromSettings(settings *config.Config, mode AppMode) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.LogLevel = ParseLevel(settings.Logging.Level)
	cfg.LogJSON = settings.Logging.Format == config.LogFormatJSON

	obs := settings.Observability
	cfg.Environment = obs.Environment
	cfg.OTLPEndpoint = obs.OTLPEndpoint
	cfg.OTLPInsecure = obs.OTLPInsecure
	cfg.OTLPHeaders = obs.OTLPHeaders
	cfg.SampleRatio = obs.SampleRatio
	cfg.Prometheus = obs.MetricsAddr != ""

	return cfg
}

// ParseLevel maps a level name to its slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
