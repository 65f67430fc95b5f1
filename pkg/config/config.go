// Package config provides configuration loading and validation for tsq.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// Sentinel validation errors.
var (
	ErrInvalidDialect      = errors.New("invalid dialect")
	ErrInvalidLogLevel     = errors.New("invalid logging level")
	ErrInvalidLogFormat    = errors.New("invalid logging format")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidCacheSize    = errors.New("query cache size must be positive")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be within [0, 1]")
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. TSQ_LOGGING_LEVEL for logging.level.
const EnvPrefix = "TSQ"

// DialectAuto selects the dialect per file from its name and content.
const DialectAuto = "auto"

// Config holds all configuration for tsq.
type Config struct {
	Dialect       string              `mapstructure:"dialect"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Output        OutputConfig        `mapstructure:"output"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Query         QueryConfig         `mapstructure:"query"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls how commands render results.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// QueryConfig holds query compilation settings.
type QueryConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPHeaders  map[string]string `mapstructure:"otlp_headers"`
	OTLPEndpoint string            `mapstructure:"otlp_endpoint"`
	Environment  string            `mapstructure:"environment"`
	MetricsAddr  string            `mapstructure:"metrics_addr"`
	SampleRatio  float64           `mapstructure:"sample_ratio"`
	OTLPInsecure bool              `mapstructure:"otlp_insecure"`
}

// AutoDialect reports whether the dialect is picked per file.
func (c *Config) AutoDialect() bool {
	return strings.EqualFold(c.Dialect, DialectAuto)
}

// ResolveDialect returns the configured dialect. With "auto" it detects the
// dialect from filename and content.
func (c *Config) ResolveDialect(filename string, content []byte) (dialect.Dialect, error) {
	if c.AutoDialect() {
		return dialect.Detect(filename, content), nil
	}

	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidDialect, err)
	}

	return d, nil
}

// LoadConfig loads configuration from file and environment variables. An
// empty configPath searches the default locations; a missing file there is
// not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("tsq")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/tsq")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("dialect", DefaultDialect)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.color", DefaultOutputColor)

	viperCfg.SetDefault("query.cache_size", DefaultQueryCacheSize)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.metrics_addr", "")
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if !config.AutoDialect() {
		if _, err := dialect.Parse(config.Dialect); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDialect, config.Dialect)
		}
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch config.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	switch config.Output.Format {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, config.Output.Format)
	}

	if config.Query.CacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, config.Query.CacheSize)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Observability.SampleRatio)
	}

	return nil
}
