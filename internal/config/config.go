// Package config loads settings from an optional YAML file with environment
// overrides for the secrets.
package config

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/credditor/credditor/internal/extract"
	"github.com/credditor/credditor/internal/ingest"
)

// Config holds everything the CLI and server need.
type Config struct {
	// Extraction strategy: "pattern" (default) or "generative".
	Strategy extract.Strategy `yaml:"strategy"`

	// Generative strategy settings. The API key can also come from the
	// ANTHROPIC_API_KEY environment variable, which wins over the file.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	// Ingestion window.
	ActivityDaysBack int `yaml:"activity_days_back"`
	CommentLimit     int `yaml:"comment_limit"`

	// Path of the local snapshot store.
	StatePath string `yaml:"state_path"`

	// Address for serve mode.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Strategy:         extract.StrategyPattern,
		ActivityDaysBack: ingest.DefaultActivityDaysBack,
		CommentLimit:     ingest.DefaultCommentLimit,
		StatePath:        "data/save_state.db",
		ListenAddr:       ":8080",
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return Config{}, errors.Wrapf(err, "read config %q", path)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %q", path)
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AnthropicAPIKey = key
	}
	if strategy := os.Getenv("CREDDITOR_STRATEGY"); strategy != "" {
		cfg.Strategy = extract.Strategy(strategy)
	}

	if cfg.Strategy == "" {
		cfg.Strategy = extract.StrategyPattern
	}
	if cfg.ActivityDaysBack <= 0 {
		cfg.ActivityDaysBack = ingest.DefaultActivityDaysBack
	}
	if cfg.CommentLimit <= 0 {
		cfg.CommentLimit = ingest.DefaultCommentLimit
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "data/save_state.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	return cfg, nil
}

// NewExtractor builds the configured extraction strategy.
func (c Config) NewExtractor() (extract.Extractor, error) {
	var completer extract.Completer
	if c.Strategy == extract.StrategyGenerative {
		cc, err := extract.NewClaudeCompleter(c.AnthropicAPIKey, c.AnthropicModel)
		if err != nil {
			return nil, err
		}
		completer = cc
	}
	return extract.New(c.Strategy, completer)
}
