package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsq/pkg/config"
	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tsq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDialect, cfg.Dialect)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultOutputFormat, cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, config.DefaultQueryCacheSize, cfg.Query.CacheSize)
	assert.Empty(t, cfg.Observability.OTLPEndpoint)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
dialect: cpp
logging:
  level: debug
  format: json
output:
  format: yaml
  color: false
query:
  cache_size: 16
observability:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
  sample_ratio: 0.25
  metrics_addr: ":9464"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "cpp", cfg.Dialect)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, config.OutputYAML, cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 16, cfg.Query.CacheSize)
	assert.Equal(t, "localhost:4317", cfg.Observability.OTLPEndpoint)
	assert.True(t, cfg.Observability.OTLPInsecure)
	assert.InDelta(t, 0.25, cfg.Observability.SampleRatio, 0.0001)
	assert.Equal(t, ":9464", cfg.Observability.MetricsAddr)

	d, err := cfg.ResolveDialect("main.c", nil)
	require.NoError(t, err)
	assert.Equal(t, dialect.Extended, d)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("TSQ_DIALECT", "extended")
	t.Setenv("TSQ_OUTPUT_FORMAT", "json")
	t.Setenv("TSQ_QUERY_CACHE_SIZE", "7")

	cfg, err := config.LoadConfig(writeConfig(t, "dialect: c\n"))
	require.NoError(t, err)

	assert.Equal(t, "extended", cfg.Dialect)
	assert.Equal(t, config.OutputJSON, cfg.Output.Format)
	assert.Equal(t, 7, cfg.Query.CacheSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"dialect", "dialect: fortran\n", config.ErrInvalidDialect},
		{"log level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"log format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"output format", "output:\n  format: html\n", config.ErrInvalidOutputFormat},
		{"cache size", "query:\n  cache_size: 0\n", config.ErrInvalidCacheSize},
		{"sample ratio", "observability:\n  sample_ratio: 1.5\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestResolveDialect_Auto(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Dialect = "AUTO"

	require.True(t, cfg.AutoDialect())

	d, err := cfg.ResolveDialect("widget.cpp", []byte("class W {};"))
	require.NoError(t, err)
	assert.Equal(t, dialect.Extended, d)

	d, err = cfg.ResolveDialect("main.c", []byte("int main(void) { return 0; }"))
	require.NoError(t, err)
	assert.Equal(t, dialect.Baseline, d)

	cfg.Dialect = "pascal"

	_, err = cfg.ResolveDialect("main.c", nil)
	require.ErrorIs(t, err, config.ErrInvalidDialect)
	require.ErrorIs(t, err, dialect.ErrUnknownDialect)
}
