package config

import (
	"strings"
	"time"

	"github.com/marmos91/staticd/pkg/adapter/httpd"
)

// Default values not owned by an adapter package.
const (
	DefaultContentRoot     = "/var/www"
	DefaultHTTPPort        = 8080
	DefaultMetricsPort     = 9090
	DefaultShutdownTimeout = 30 * time.Second
	DefaultReadBufferSize  = 4096

	// DefaultMetricsLogInterval is only registered as a viper default, so an
	// explicit 0 in a config file disables the periodic log line.
	DefaultMetricsLogInterval = 5 * time.Minute
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "") are replaced with defaults
//   - Explicit values are preserved
//   - Booleans are left alone: their defaults come from viper
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyContentDefaults(&cfg.Content)
	applyAdaptersDefaults(&cfg.Adapters)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}
}

// applyContentDefaults sets content root defaults.
func applyContentDefaults(cfg *ContentConfig) {
	if cfg.Root == "" {
		cfg.Root = DefaultContentRoot
	}
	// ContainPaths defaults to false: request paths reach the filesystem as-is
}

// applyAdaptersDefaults sets adapter defaults.
func applyAdaptersDefaults(cfg *AdaptersConfig) {
	// Enable the HTTP adapter when nothing was configured, so a config-less
	// start passes validation. An explicit enabled: false survives because
	// it always comes with a port from the registered defaults.
	if !cfg.HTTP.Enabled && cfg.HTTP.Port == 0 {
		cfg.HTTP.Enabled = true
	}

	applyHTTPDefaults(&cfg.HTTP)
}

// applyHTTPDefaults sets HTTP adapter defaults.
func applyHTTPDefaults(cfg *httpd.HTTPConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultHTTPPort
	}
	if cfg.Backlog == 0 {
		cfg.Backlog = httpd.DefaultBacklog
	}
	if cfg.Dispatcher == "" {
		cfg.Dispatcher = "pooled"
	}
	if cfg.Dispatcher == "pooled" && cfg.Workers == 0 {
		cfg.Workers = httpd.DefaultWorkers
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = DefaultReadBufferSize
	}
	// QueueSize defaults to 0 (unbounded)
	// AcceptRate defaults to 0 (no limit)
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Registering viper defaults
//   - Generating sample configuration files
//   - Testing
func GetDefaultConfig() *Config {
	cfg := &Config{
		Adapters: AdaptersConfig{
			HTTP: httpd.HTTPConfig{
				Enabled:            true,
				MetricsLogInterval: DefaultMetricsLogInterval,
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
