package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if !filepath.IsAbs(cfg.Content.Root) {
		return fmt.Errorf("content.root: must be an absolute path, got %q", cfg.Content.Root)
	}

	if !cfg.Adapters.HTTP.Enabled {
		return fmt.Errorf("adapters: at least one adapter must be enabled")
	}

	http := cfg.Adapters.HTTP
	if http.Dispatcher == "pooled" && http.Workers <= 0 {
		return fmt.Errorf("adapters.http.workers: pooled dispatcher needs at least one worker, got %d", http.Workers)
	}
	if http.AcceptBurst > 0 && http.AcceptRate == 0 {
		return fmt.Errorf("adapters.http.accept_burst: set without accept_rate")
	}

	if cfg.Server.Metrics.Enabled && cfg.Server.Metrics.Port == http.Port {
		return fmt.Errorf("server.metrics.port: %d conflicts with adapters.http.port", http.Port)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
