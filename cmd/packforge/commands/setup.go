package commands

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/drafts"
	"github.com/packforge/packforge/internal/genai"
	"github.com/packforge/packforge/internal/pipeline"
	"github.com/packforge/packforge/internal/state"
	"github.com/packforge/packforge/internal/template"
)

// loadConfig reads packforge.yml from --config or the default location.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// loadTemplate loads the configured template file, or the built-in character
// template when none is configured.
func loadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.LoadDefault()
	}
	return template.LoadFile(path)
}

// newEngine builds the generation engine from config, resolving the API key
// from the environment.
func newEngine(cfg *config.Config) (genai.Engine, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	return genai.New(genai.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   key,
		BaseURL:  cfg.BaseURL,
	})
}

// engineFromSnapshot builds an engine for resume: provider and model come
// from the persisted snapshot so the batch finishes with the parameters it
// started with, while the API key is resolved from the current environment.
func engineFromSnapshot(cfg *config.Config, snap state.ConfigSnapshot) (genai.Engine, error) {
	keyEnv := cfg.APIKeyEnv
	if snap.Provider != cfg.Provider {
		switch snap.Provider {
		case "openai":
			keyEnv = "OPENAI_API_KEY"
		default:
			keyEnv = "GEMINI_API_KEY"
		}
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("API key environment variable %s is not set", keyEnv)
	}
	return genai.New(genai.Config{
		Provider: snap.Provider,
		Model:    snap.Model,
		APIKey:   key,
		BaseURL:  cfg.BaseURL,
	})
}

// newPipeline wires an engine and template into a ready pipeline.
func newPipeline(engine genai.Engine, templatePath string) (*pipeline.Pipeline, error) {
	tmpl, err := loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return pipeline.New(engine, tmpl)
}

// newDrafts opens the draft store under the configured output directory.
func newDrafts(cfg *config.Config) (*drafts.Store, error) {
	return drafts.NewStore(cfg.OutputDir)
}

// newStateStore connects to the configured Redis instance for batch state.
func newStateStore(cfg *config.Config) (*state.Store, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return state.NewStore(opts, cfg.Instance)
}
