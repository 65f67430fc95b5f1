package config

// Output and log formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Default configuration values.
const (
	DefaultDialect        = "baseline"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = LogFormatText
	DefaultOutputFormat   = OutputText
	DefaultOutputColor    = true
	DefaultQueryCacheSize = 128
	DefaultSampleRatio    = 0.0
)
