package config

import "fmt"

// validate performs comprehensive validation of the configuration.
// Returns an error describing the first validation failure found.
func validate(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateAddon(&config.Addon); err != nil {
		return fmt.Errorf("addon config: %w", err)
	}

	if err := validateUpstream(&config.Upstream); err != nil {
		return fmt.Errorf("upstream config: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if config.RateLimitPerMin < 0 {
		return fmt.Errorf("rate_limit_per_min must not be negative")
	}

	return nil
}

// validateAddon validates the advertised addon identity.
func validateAddon(config *AddonConfig) error {
	if config.ID == "" {
		return fmt.Errorf("id is required")
	}

	if config.Name == "" {
		return fmt.Errorf("name is required")
	}

	if config.Version == "" {
		return fmt.Errorf("version is required")
	}

	return nil
}

// validateUpstream validates remote server client configuration.
func validateUpstream(config *UpstreamConfig) error {
	if config.RetryAttempts < 0 || config.RetryAttempts > 10 {
		return fmt.Errorf("retry_attempts must be between 0 and 10")
	}

	if config.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}

	return nil
}

// validateLogging validates logging configuration.
func validateLogging(config *LoggingConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error")
	}

	switch config.Format {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text")
	}

	return nil
}
