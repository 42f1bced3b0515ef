// Package config loads and validates the made.yaml configuration file
// that governs the gateway adapter, upload staging, retention, and
// database connection settings.
package config

import (
	"time"

	"github.com/made-ai/made/pkg/database"
)

// MadeYAMLConfig represents the complete made.yaml file structure.
type MadeYAMLConfig struct {
	Server    *ServerConfig    `yaml:"server"`
	Gateway   *GatewayConfig   `yaml:"gateway"`
	Staging   *StagingConfig   `yaml:"staging"`
	Retention *RetentionConfig `yaml:"retention"`
	Defaults  *DefaultsConfig  `yaml:"defaults"`
}

// ServerConfig groups HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// GatewayConfig describes how to reach the LLM Gateway Adapter's upstream.
type GatewayConfig struct {
	BaseURL      string        `yaml:"base_url" validate:"required,url"`
	APIKeyEnv    string        `yaml:"api_key_env" validate:"required"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
	CatalogTTL   time.Duration `yaml:"catalog_ttl"`
}

// StagingConfig bounds the ephemeral upload-staging map (§9 open question:
// "Staging map lifetime" — resolved with a TTL and a size cap).
type StagingConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	MaxBytes int64         `yaml:"max_bytes"`
}

// DefaultsConfig supplies fallback values for council requests that omit
// them.
type DefaultsConfig struct {
	CouncilMembers []string `yaml:"council_members"`
	ChairmanModel  string   `yaml:"chairman_model"`
	MaxIterations  int      `yaml:"max_iterations" validate:"min=1"`
}

// Config is the fully loaded, defaulted, and validated application
// configuration. It is the single value threaded through main's wiring.
type Config struct {
	Server    ServerConfig
	Gateway   GatewayConfig
	Staging   StagingConfig
	Retention RetentionConfig
	Defaults  DefaultsConfig
	DB        database.Config
}
