package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configHeader = `# staticd configuration file
#
# Every key can be overridden with an environment variable: prefix STATICD_,
# dots become underscores (adapters.http.port -> STATICD_ADAPTERS_HTTP_PORT).
`

// sectionComments are attached to the top-level keys of generated files.
var sectionComments = map[string]string{
	"logging":  "Logging: level DEBUG|INFO|WARN|ERROR, format text|json, output stdout|stderr|<file>",
	"server":   "Process-wide settings and the Prometheus /metrics endpoint",
	"content":  "Directory served to clients. contain_paths rejects '..' escapes with a 404",
	"adapters": "Listeners. dispatcher: inline (one request at a time) or pooled (worker pool)\nqueue_size 0 = unbounded, accept_rate 0 = no limit, metrics_log_interval 0 = off",
}

// InitConfig writes the default configuration to the default location.
//
// Returns the path written. Fails if the file exists and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes the default configuration to path, creating parent
// directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML with a file header and a
// comment above each top-level section.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if comment, ok := sectionComments[key.Value]; ok {
				key.HeadComment = comment
			}
		}
	}

	body, err := yaml.Marshal(&node)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(configHeader)
	sb.WriteString("\n")
	sb.Write(body)
	return sb.String(), nil
}
