package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// HTTP surface
	Server ServerConfig `mapstructure:"server"`

	// Page download
	Fetcher FetcherConfig `mapstructure:"fetcher"`

	// External APIs
	APIs APIConfig `mapstructure:"apis"`

	// Heuristic evaluation
	Rules RulesConfig `mapstructure:"rules"`

	// Multi-URL audits
	Batch BatchConfig `mapstructure:"batch"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	DefaultFormat string        `mapstructure:"default_format"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FetcherConfig holds page download configuration
type FetcherConfig struct {
	UserAgent            string        `mapstructure:"user_agent"`
	Timeout              time.Duration `mapstructure:"timeout"`
	FollowRedirects      bool          `mapstructure:"follow_redirects"`
	MaxRedirects         int           `mapstructure:"max_redirects"`
	MaxBodyBytes         int64         `mapstructure:"max_body_bytes"`
	BlockPrivateNetworks bool          `mapstructure:"block_private_networks"`
	CheckRobotsTxt       bool          `mapstructure:"check_robots_txt"`
}

// APIConfig holds API keys and endpoints
type APIConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Temperature      float64       `mapstructure:"temperature"`
	MaxExcerptTokens int           `mapstructure:"max_excerpt_tokens"`
}

// Enabled reports whether enrichment can be attempted.
func (o OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

// RulesConfig holds rule engine configuration
type RulesConfig struct {
	Language string `mapstructure:"language"` // "ru" or "en"
}

// BatchConfig holds configuration for auditing several URLs
type BatchConfig struct {
	Concurrency       int     `mapstructure:"concurrency"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "text"
	OutputPath string `mapstructure:"output_path"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var reportFormats = map[string]bool{"json": true, "yaml": true, "html": true, "markdown": true}

// Load reads configuration from file, environment and defaults. A missing
// config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.lpscreen")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.default_format", "json")

	v.SetDefault("fetcher.user_agent", "LPScreen/1.0 (+https://github.com/MaksimSorokoumov/LP-screening)")
	v.SetDefault("fetcher.timeout", "10s")
	v.SetDefault("fetcher.follow_redirects", true)
	v.SetDefault("fetcher.max_redirects", 10)
	v.SetDefault("fetcher.max_body_bytes", 10<<20)
	v.SetDefault("fetcher.block_private_networks", false)
	v.SetDefault("fetcher.check_robots_txt", false)

	v.SetDefault("apis.openai.model", "gpt-4o-mini")
	v.SetDefault("apis.openai.timeout", "30s")
	v.SetDefault("apis.openai.temperature", 0.7)
	v.SetDefault("apis.openai.max_excerpt_tokens", 600)

	v.SetDefault("rules.language", "ru")

	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.requests_per_second", 2.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output_path", "stderr")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("LPSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("apis.openai.api_key", "LPSCREEN_APIS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("apis.openai.base_url", "LPSCREEN_APIS_OPENAI_BASE_URL", "OPENAI_BASE_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be in 1..65535", ErrInvalid)
	}
	if !reportFormats[c.Server.DefaultFormat] {
		return fmt.Errorf("%w: server.default_format %q is not one of json, yaml, html, markdown", ErrInvalid, c.Server.DefaultFormat)
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("%w: fetcher.timeout must be positive", ErrInvalid)
	}
	if c.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("%w: fetcher.max_redirects must not be negative", ErrInvalid)
	}
	if c.Fetcher.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: fetcher.max_body_bytes must be positive", ErrInvalid)
	}
	if c.APIs.OpenAI.Timeout <= 0 {
		return fmt.Errorf("%w: apis.openai.timeout must be positive", ErrInvalid)
	}
	if c.APIs.OpenAI.MaxExcerptTokens < 0 {
		return fmt.Errorf("%w: apis.openai.max_excerpt_tokens must not be negative", ErrInvalid)
	}
	switch c.Rules.Language {
	case "ru", "en":
	default:
		return fmt.Errorf("%w: rules.language %q is not one of ru, en", ErrInvalid, c.Rules.Language)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("%w: batch.concurrency must be positive", ErrInvalid)
	}
	if c.Batch.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: batch.requests_per_second must be positive", ErrInvalid)
	}
	return nil
}

// IsReportFormat reports whether format names a supported report renderer.
func IsReportFormat(format string) bool {
	return reportFormats[format]
}
