package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "made.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MADE_GATEWAY_API_KEY", "test-key")
	t.Setenv("DB_PASSWORD", "test-pass")
}

func TestInitialize_DefaultsAppliedWhenSectionsAbsent(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATEWAY_BASE_URL", "https://gateway.example.com")
	path := writeTestYAML(t, `gateway:
  base_url: "${GATEWAY_BASE_URL}"
`)

	cfg, err := Initialize(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1*time.Hour, cfg.Staging.TokenTTL)
	assert.Equal(t, 5, cfg.Defaults.MaxIterations)
}

func TestInitialize_UserValuesOverrideDefaults(t *testing.T) {
	setRequiredEnv(t)
	path := writeTestYAML(t, `
server:
  addr: ":9090"
gateway:
  base_url: "https://gateway.example.com"
defaults:
  council_members: ["gpt-4o", "claude-3"]
  chairman_model: "gpt-4o"
  max_iterations: 3
`)

	cfg, err := Initialize(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://gateway.example.com", cfg.Gateway.BaseURL)
	assert.Equal(t, []string{"gpt-4o", "claude-3"}, cfg.Defaults.CouncilMembers)
	assert.Equal(t, 3, cfg.Defaults.MaxIterations)
	// Untouched sections keep their defaults.
	assert.Equal(t, 1*time.Hour, cfg.Staging.TokenTTL)
}

func TestInitialize_MissingGatewayAPIKeyFails(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-pass")
	path := writeTestYAML(t, `
gateway:
  base_url: "https://gateway.example.com"
`)

	_, err := Initialize(context.Background(), path)

	require.Error(t, err)
}

func TestInitialize_InvalidYAMLFails(t *testing.T) {
	setRequiredEnv(t)
	path := writeTestYAML(t, "server: [this is not valid: yaml")

	_, err := Initialize(context.Background(), path)

	require.Error(t, err)
}
