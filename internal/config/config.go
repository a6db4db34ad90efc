// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. STYLECORE_RENDER_FORMAT.
const EnvPrefix = "STYLECORE"

// Supported output formats for rendered documents.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Render() RenderConfig
	Metrics() MetricsConfig

	// Render Setters
	SetRenderFormat(string)
	SetRenderConcurrency(int)

	// Metrics Setters
	SetMetricsTextfilePath(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	RenderCfg  RenderConfig  `mapstructure:"render" yaml:"render"`
	MetricsCfg MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Render() RenderConfig   { return c.RenderCfg }
func (c *Config) Metrics() MetricsConfig { return c.MetricsCfg }

// -- Setters, used by CLI flags that override the file --

func (c *Config) SetRenderFormat(f string)        { c.RenderCfg.Format = f }
func (c *Config) SetRenderConcurrency(n int)      { c.RenderCfg.Concurrency = n }
func (c *Config) SetMetricsTextfilePath(p string) { c.MetricsCfg.TextfilePath = p }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RenderConfig controls how documents are rendered and printed.
type RenderConfig struct {
	// Concurrency bounds how many documents are rendered at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// Format is one of text, json or xml.
	Format string `mapstructure:"format" yaml:"format"`
	// MaxInputBytes caps the decoded size of a single document.
	MaxInputBytes int64 `mapstructure:"max_input_bytes" yaml:"max_input_bytes"`
}

// MetricsConfig controls the optional metrics dump.
type MetricsConfig struct {
	// TextfilePath, when set, receives the counters in the Prometheus text format after a run.
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stylecore")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Render --
	v.SetDefault("render.concurrency", 4)
	v.SetDefault("render.format", FormatText)
	v.SetDefault("render.max_input_bytes", 16<<20)

	// -- Metrics --
	v.SetDefault("metrics.textfile_path", "")
}

// ConfigureEnv lets environment variables override any key known to v.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.RenderCfg.Validate(); err != nil {
		return fmt.Errorf("render configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the RenderConfig settings.
func (r *RenderConfig) Validate() error {
	if r.Concurrency <= 0 {
		return fmt.Errorf("render.concurrency must be a positive integer")
	}
	switch r.Format {
	case FormatText, FormatJSON, FormatXML:
	default:
		return fmt.Errorf("render.format must be one of %s, %s or %s, got %q", FormatText, FormatJSON, FormatXML, r.Format)
	}
	if r.MaxInputBytes <= 0 {
		return fmt.Errorf("render.max_input_bytes must be a positive integer")
	}
	return nil
}
