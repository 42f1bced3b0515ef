package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/made-ai/made/pkg/database"
)

// defaultConfig returns the built-in baseline merged underneath whatever
// the user supplies in made.yaml — the same "built-in defaults + user
// overrides" shape the loader uses for every section.
func defaultConfig() *MadeYAMLConfig {
	return &MadeYAMLConfig{
		Server: &ServerConfig{
			Addr: ":8080",
		},
		Gateway: &GatewayConfig{
			APIKeyEnv:   "MADE_GATEWAY_API_KEY",
			CallTimeout: 60 * time.Second,
			CatalogTTL:  10 * time.Minute,
		},
		Staging: &StagingConfig{
			TokenTTL: 1 * time.Hour,
			MaxBytes: 50 * 1024 * 1024,
		},
		Retention: DefaultRetentionConfig(),
		Defaults: &DefaultsConfig{
			MaxIterations: 5,
		},
	}
}

// Initialize loads, defaults, validates, and returns ready-to-use
// configuration. This is the primary entry point called from main.
func Initialize(_ context.Context, path string) (*Config, error) {
	log := slog.With("config_path", path)
	log.Info("initializing configuration")

	yamlCfg, err := loadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	cfg := &Config{
		Server:    *yamlCfg.Server,
		Gateway:   *yamlCfg.Gateway,
		Staging:   *yamlCfg.Staging,
		Retention: *yamlCfg.Retention,
		Defaults:  *yamlCfg.Defaults,
		DB:        dbCfg,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized",
		"addr", cfg.Server.Addr,
		"gateway_base_url", cfg.Gateway.BaseURL,
		"council_members", cfg.Defaults.CouncilMembers)

	return cfg, nil
}

// loadYAML reads made.yaml at path, expands env vars, parses it, and
// merges it on top of the built-in defaults (user values win).
func loadYAML(path string) (*MadeYAMLConfig, error) {
	defaults := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, NewLoadError(path, err)
	}

	expanded := ExpandEnv(raw)

	var user MadeYAMLConfig
	if err := yaml.Unmarshal(expanded, &user); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("invalid YAML: %w", err))
	}

	if err := mergo.Merge(defaults, user, mergo.WithOverride); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("merging defaults: %w", err))
	}

	return defaults, nil
}

var structValidator = validator.New()

func validateConfig(cfg *Config) error {
	if err := structValidator.Struct(cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := structValidator.Struct(cfg.Gateway); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := structValidator.Struct(cfg.Defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := structValidator.Struct(cfg.Retention); err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	if cfg.Staging.TokenTTL <= 0 {
		return fmt.Errorf("staging.token_ttl must be positive, got %v", cfg.Staging.TokenTTL)
	}
	if cfg.Staging.MaxBytes <= 0 {
		return fmt.Errorf("staging.max_bytes must be positive, got %d", cfg.Staging.MaxBytes)
	}
	if cfg.Retention.CleanupInterval <= 0 {
		return fmt.Errorf("retention.cleanup_interval must be positive, got %v", cfg.Retention.CleanupInterval)
	}
	if os.Getenv(cfg.Gateway.APIKeyEnv) == "" {
		return fmt.Errorf("gateway.api_key_env: environment variable %s is not set", cfg.Gateway.APIKeyEnv)
	}
	return nil
}
