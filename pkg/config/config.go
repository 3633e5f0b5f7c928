// Package config provides configuration management for go-jf-stremio.
// It uses koanf for flexible configuration loading from YAML files with
// validation and sensible defaults for every value.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete configuration for the go-jf-stremio service.
// It represents the structure of config.yaml with validation rules for each
// section.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Addon    AddonConfig    `koanf:"addon"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	EnableCompression bool          `koanf:"enable_compression"`
	RateLimitPerMin   int           `koanf:"rate_limit_per_min"`
}

// AddonConfig describes the addon identity advertised in the manifest.
type AddonConfig struct {
	ID          string `koanf:"id"`
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
	Version     string `koanf:"version"`
}

// UpstreamConfig controls how the remote media server is called.
type UpstreamConfig struct {
	Timeout           time.Duration `koanf:"timeout"`
	RetryAttempts     int           `koanf:"retry_attempts"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	AllowPrivateHosts bool          `koanf:"allow_private_hosts"`
}

// LoggingConfig defines logging behavior and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads configuration from the specified YAML file and applies
// validation. Returns a validated Config struct or an error if
// loading/validation fails.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults sets sensible defaults for configuration values that
// weren't specified.
func applyDefaults(config *Config) {
	// Server defaults
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 7000
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30 * time.Second
	}
	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}
	if config.Server.RateLimitPerMin == 0 {
		config.Server.RateLimitPerMin = 120
	}

	// Addon defaults
	if config.Addon.ID == "" {
		config.Addon.ID = "ai.opd.go-jf-stremio"
	}
	if config.Addon.Name == "" {
		config.Addon.Name = "Jellyfin"
	}
	if config.Addon.Description == "" {
		config.Addon.Description = "Direct-play streams from your personal Jellyfin server"
	}
	if config.Addon.Version == "" {
		config.Addon.Version = "1.0.0"
	}

	// Upstream defaults
	if config.Upstream.Timeout == 0 {
		config.Upstream.Timeout = 20 * time.Second
	}
	if config.Upstream.RetryAttempts == 0 {
		config.Upstream.RetryAttempts = 2
	}
	if config.Upstream.RequestsPerSecond == 0 {
		config.Upstream.RequestsPerSecond = 20
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
	}
}

// GetLogLevel converts the string log level to slog.Level.
// Returns slog.LevelInfo for invalid or unknown levels.
func (c *LoggingConfig) GetLogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
