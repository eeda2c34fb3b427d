// Package config provides configuration management for the literature aggregation service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the literature aggregation service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Cache contains result cache settings.
	Cache CacheConfig `mapstructure:"cache"`
	// Aggregator contains aggregation pipeline settings.
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	// Sources contains literature source API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace is the prefix for all metric names.
	Namespace string `mapstructure:"namespace"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	// Enabled controls whether aggregated results are cached.
	Enabled bool `mapstructure:"enabled"`
	// Size is the maximum number of cached results.
	Size int `mapstructure:"size"`
	// TTL is the time-to-live for cached results.
	TTL time.Duration `mapstructure:"ttl"`
}

// AggregatorConfig holds aggregation pipeline settings.
type AggregatorConfig struct {
	// DefaultLimitPerSource is the per-source limit applied when a request
	// does not set one.
	DefaultLimitPerSource int `mapstructure:"default_limit_per_source"`
	// SearchTimeout bounds one aggregated search across all sources.
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// SourcesConfig holds configuration for all literature source APIs.
type SourcesConfig struct {
	// CrossRef contains CrossRef API settings.
	CrossRef SourceConfig `mapstructure:"crossref"`
	// ArXiv contains arXiv API settings.
	ArXiv SourceConfig `mapstructure:"arxiv"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex SourceConfig `mapstructure:"openalex"`
}

// SourceConfig holds configuration for a single literature source API.
type SourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact email for polite pools (CrossRef and OpenAlex).
	Email string `mapstructure:"email"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int `mapstructure:"burst_size"`
	// MaxResults is the maximum results per query.
	MaxResults int `mapstructure:"max_results"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("LITAGG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/literature-aggregation-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "literature_aggregation")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", "5m")

	// Aggregator defaults
	v.SetDefault("aggregator.default_limit_per_source", 20)
	v.SetDefault("aggregator.search_timeout", "60s")

	// Sources defaults - CrossRef
	v.SetDefault("sources.crossref.enabled", true)
	v.SetDefault("sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("sources.crossref.email", "")
	v.SetDefault("sources.crossref.timeout", "30s")
	v.SetDefault("sources.crossref.rate_limit", 10.0)
	v.SetDefault("sources.crossref.burst_size", 10)
	v.SetDefault("sources.crossref.max_results", 50)

	// Sources defaults - arXiv
	v.SetDefault("sources.arxiv.enabled", true)
	v.SetDefault("sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("sources.arxiv.timeout", "30s")
	v.SetDefault("sources.arxiv.rate_limit", 3.0) // arXiv recommends max 3 req/sec
	v.SetDefault("sources.arxiv.burst_size", 3)
	v.SetDefault("sources.arxiv.max_results", 100)

	// Sources defaults - OpenAlex
	v.SetDefault("sources.openalex.enabled", true)
	v.SetDefault("sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("sources.openalex.email", "")
	v.SetDefault("sources.openalex.timeout", "30s")
	v.SetDefault("sources.openalex.rate_limit", 10.0)
	v.SetDefault("sources.openalex.burst_size", 10)
	v.SetDefault("sources.openalex.max_results", 200)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Cache.Enabled {
		if c.Cache.Size <= 0 {
			return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
		}
	}

	if c.Aggregator.DefaultLimitPerSource < 1 || c.Aggregator.DefaultLimitPerSource > 50 {
		return fmt.Errorf("default limit per source must be between 1 and 50, got %d", c.Aggregator.DefaultLimitPerSource)
	}
	if c.Aggregator.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive, got %s", c.Aggregator.SearchTimeout)
	}

	for name, source := range map[string]SourceConfig{
		"crossref": c.Sources.CrossRef,
		"arxiv":    c.Sources.ArXiv,
		"openalex": c.Sources.OpenAlex,
	} {
		if !source.Enabled {
			continue
		}
		if source.BaseURL == "" {
			return fmt.Errorf("source %s: base_url is required", name)
		}
		if source.RateLimit <= 0 {
			return fmt.Errorf("source %s: rate_limit must be positive", name)
		}
		if source.MaxResults <= 0 {
			return fmt.Errorf("source %s: max_results must be positive", name)
		}
	}

	return nil
}
