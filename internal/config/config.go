// Package config loads and validates packforge.yml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "packforge.yml"

// BatchConfig holds defaults for batch runs. Flags override these per
// invocation.
type BatchConfig struct {
	Concurrency     int   `yaml:"concurrency,omitempty"`       // Parallel workers (default: 4)
	MinIntervalMs   int64 `yaml:"min_interval_ms,omitempty"`   // Minimum ms between dispatches (0 = unlimited rate)
	ContinueOnError bool  `yaml:"continue_on_error,omitempty"` // Sequential mode: keep going past failures
}

// Config represents the top-level packforge.yml configuration.
type Config struct {
	Version   string      `yaml:"version"`
	Provider  string      `yaml:"provider"`              // Required: "gemini" or "openai"
	Model     string      `yaml:"model,omitempty"`       // Default depends on provider
	APIKeyEnv string      `yaml:"api_key_env,omitempty"` // Env var holding the API key
	BaseURL   string      `yaml:"base_url,omitempty"`    // Provider endpoint override
	RedisURL  string      `yaml:"redis_url,omitempty"`   // Batch state store (default: redis://localhost:6379)
	Instance  string      `yaml:"instance,omitempty"`    // Redis key namespace (default: "default")
	OutputDir string      `yaml:"output_dir,omitempty"`  // Draft root (default: "drafts")
	Template  string      `yaml:"template,omitempty"`    // Template file path; empty means built-in
	Batch     BatchConfig `yaml:"batch,omitempty"`
}

// Default returns the configuration used when no packforge.yml exists:
// Gemini against the public endpoint, local Redis, drafts under ./drafts.
func Default() *Config {
	c := &Config{
		Version:  "1.0",
		Provider: "gemini",
	}
	c.applyDefaults()
	return c
}

// Validate performs strict validation on the configuration and fills in
// defaults for omitted fields.
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: provider enum
	if c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("invalid provider: %s (must be 'gemini' or 'openai')", c.Provider)
	}

	c.applyDefaults()

	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be >= 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.MinIntervalMs < 0 {
		return fmt.Errorf("batch.min_interval_ms must be >= 0, got %d", c.Batch.MinIntervalMs)
	}

	// If a template file is named, verify it exists now rather than at
	// generation time.
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("template file does not exist: %s", c.Template)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		switch c.Provider {
		case "openai":
			c.Model = "gpt-4o-mini"
		default:
			c.Model = "gemini-1.5-flash"
		}
	}
	if c.APIKeyEnv == "" {
		switch c.Provider {
		case "openai":
			c.APIKeyEnv = "OPENAI_API_KEY"
		default:
			c.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if c.RedisURL == "" {
		c.RedisURL = "redis://localhost:6379"
	}
	if c.Instance == "" {
		c.Instance = "default"
	}
	if c.OutputDir == "" {
		c.OutputDir = "drafts"
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = 4
	}
}

// APIKey resolves the provider API key from the configured environment
// variable. The key never lives in the config file itself.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("API key environment variable %s is not set", c.APIKeyEnv)
	}
	return key, nil
}

// Load reads and validates packforge.yml from the specified path. An empty
// path means DefaultPath; if that file does not exist, defaults are used.
func Load(path string) (*Config, error) {
	usingDefault := path == ""
	if usingDefault {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if usingDefault && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
