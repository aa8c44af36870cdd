package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "farkle.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", config.ListenAddress())
	assert.Equal(t, 10000, config.Game.TargetScore)
	assert.Zero(t, config.TurnTimeout())
	assert.NoError(t, config.Validate())
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfigFile(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  target_score         = 5000
  opening_score        = 500
  turn_timeout_seconds = 90
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", config.ListenAddress())
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, 5000, config.Game.TargetScore)
	assert.Equal(t, 500, config.Game.OpeningScore)
	assert.Equal(t, 90*time.Second, config.TurnTimeout())
	assert.NoError(t, config.Validate())
}

func TestLoadConfigPartialBlocksGetDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server {
  port = 9000
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "info", config.Server.LogLevel)
	require.NotNil(t, config.Game, "absent game block still yields rules")
	assert.Equal(t, 10000, config.Game.TargetScore)
}

func TestLoadConfigRejectsBadSyntax(t *testing.T) {
	path := writeConfigFile(t, `server {`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero target", func(c *Config) { c.Game.TargetScore = 0 }},
		{"negative opening", func(c *Config) { c.Game.OpeningScore = -1 }},
		{"opening above target", func(c *Config) { c.Game.OpeningScore = 10000 }},
		{"negative timeout", func(c *Config) { c.Game.TurnTimeoutSeconds = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
