package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_LogLevelNormalized(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "warn"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected normalized level 'WARN', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Server.Metrics.Port)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestApplyDefaults_Content(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Content.Root != "/var/www" {
		t.Errorf("Expected default content root '/var/www', got %q", cfg.Content.Root)
	}
	if cfg.Content.ContainPaths {
		t.Error("Expected contain_paths to default to false")
	}
}

func TestApplyDefaults_HTTP(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	http := cfg.Adapters.HTTP
	if !http.Enabled {
		t.Error("Expected HTTP adapter enabled when unconfigured")
	}
	if http.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", http.Port)
	}
	if http.Backlog != 100 {
		t.Errorf("Expected default backlog 100, got %d", http.Backlog)
	}
	if http.Dispatcher != "pooled" {
		t.Errorf("Expected default dispatcher 'pooled', got %q", http.Dispatcher)
	}
	if http.Workers != 8 {
		t.Errorf("Expected default workers 8, got %d", http.Workers)
	}
	if http.QueueSize != 0 {
		t.Errorf("Expected unbounded queue by default, got %d", http.QueueSize)
	}
	if http.ReadBufferSize != 4096 {
		t.Errorf("Expected default read buffer 4096, got %d", http.ReadBufferSize)
	}
	if http.AcceptRate != 0 {
		t.Errorf("Expected no accept rate limit by default, got %d", http.AcceptRate)
	}
}

func TestApplyDefaults_InlineHasNoWorkers(t *testing.T) {
	cfg := &Config{}
	cfg.Adapters.HTTP.Dispatcher = "inline"
	ApplyDefaults(cfg)

	if cfg.Adapters.HTTP.Workers != 0 {
		t.Errorf("Expected inline dispatcher to keep 0 workers, got %d", cfg.Adapters.HTTP.Workers)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Adapters.HTTP.Port = 9999
	cfg.Adapters.HTTP.Workers = 2
	cfg.Adapters.HTTP.QueueSize = 64
	cfg.Content.Root = "/srv"
	ApplyDefaults(cfg)

	if cfg.Adapters.HTTP.Port != 9999 {
		t.Errorf("Expected port 9999 to be preserved, got %d", cfg.Adapters.HTTP.Port)
	}
	if cfg.Adapters.HTTP.Workers != 2 {
		t.Errorf("Expected workers 2 to be preserved, got %d", cfg.Adapters.HTTP.Workers)
	}
	if cfg.Adapters.HTTP.QueueSize != 64 {
		t.Errorf("Expected queue size 64 to be preserved, got %d", cfg.Adapters.HTTP.QueueSize)
	}
	if cfg.Content.Root != "/srv" {
		t.Errorf("Expected root '/srv' to be preserved, got %q", cfg.Content.Root)
	}
	if cfg.Adapters.HTTP.Enabled {
		t.Error("Expected an explicitly configured port to leave Enabled alone")
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if !cfg.Adapters.HTTP.Enabled {
		t.Error("Expected HTTP adapter enabled in default config")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid, got: %v", err)
	}
}
