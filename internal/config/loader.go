package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	paths := []string{
		"/etc/vizdocs/vizdocs.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vizdocs", "vizdocs.yaml"))
	}

	paths = append(paths, "vizdocs.yaml")

	if envPath := os.Getenv("VIZDOCS_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// /etc/vizdocs/vizdocs.yaml < ~/.config/vizdocs/vizdocs.yaml < ./vizdocs.yaml < $VIZDOCS_CONFIG
func Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables have higher priority than YAML
// config values.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("VIZDOCS_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}
	if base := os.Getenv("VIZDOCS_DOCS_BASE_URL"); base != "" {
		cfg.Docs.BaseURL = base
	}
	if timeout := os.Getenv("VIZDOCS_DOCS_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			slog.Warn("ignoring invalid VIZDOCS_DOCS_TIMEOUT", "value", timeout, "error", err)
		} else {
			cfg.Docs.Timeout = d
		}
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config search paths
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	slog.Debug("loading config file", "path", path)

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	switch cfg.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("server.transport must be \"stdio\" or \"http\", got %q", cfg.Server.Transport)
	}

	if cfg.Docs.BaseURL == "" {
		return fmt.Errorf("docs.base_url must not be empty")
	}
	if cfg.Docs.Timeout <= 0 {
		return fmt.Errorf("docs.timeout must be positive, got %s", cfg.Docs.Timeout)
	}

	l := cfg.Limits
	if l.MinTokens < 1 || l.MaxTokens < l.MinTokens {
		return fmt.Errorf("limits: token range [%d,%d] is invalid", l.MinTokens, l.MaxTokens)
	}
	if l.DefaultTokens < l.MinTokens || l.DefaultTokens > l.MaxTokens {
		return fmt.Errorf("limits.default_tokens %d outside [%d,%d]", l.DefaultTokens, l.MinTokens, l.MaxTokens)
	}
	if l.SubTaskTokenCap < 1 {
		return fmt.Errorf("limits.subtask_token_cap must be at least 1")
	}
	if l.MinTopics < 1 || l.MaxTopics < l.MinTopics {
		return fmt.Errorf("limits: topic range [%d,%d] is invalid", l.MinTopics, l.MaxTopics)
	}

	cfg.Detection.ProjectDir = ExpandHome(cfg.Detection.ProjectDir)

	return nil
}
