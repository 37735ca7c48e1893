package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boothjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Game.StartingMoney)
}

func TestLoadMergesPartialBlocks(t *testing.T) {
	path := writeConfig(t, `
server {
  address      = ":9090"
  database_url = "postgres://booth@localhost/booth"
}

game {
  play_seconds  = 60
  deal_delay_ms = 0
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "postgres://booth@localhost/booth", cfg.Server.DatabaseURL)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, time.Minute, cfg.Game.PlayDuration())
	assert.Equal(t, 430*time.Millisecond, cfg.Game.DealDelay(), "zero keeps the default")
	assert.Equal(t, 2, cfg.Game.PracticeRounds)
	assert.Equal(t, 5, cfg.Leaderboard.Size)
	assert.Equal(t, 5*time.Second, cfg.Leaderboard.Timeout())
}

func TestLoadRejectsBadHCL(t *testing.T) {
	path := writeConfig(t, `server { address = `)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestLoadRejectsUnknownAttribute(t *testing.T) {
	path := writeConfig(t, `game { blinds = 2 }`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }, "address is required"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }, "invalid log level"},
		{"no money", func(c *Config) { c.Game.StartingMoney = 0 }, "starting money"},
		{"no time", func(c *Config) { c.Game.PlaySeconds = -1 }, "play seconds"},
		{"negative practice", func(c *Config) { c.Game.PracticeRounds = -1 }, "practice rounds"},
		{"negative delay", func(c *Config) { c.Game.DealDelayMS = -5 }, "deal delay"},
		{"huge board", func(c *Config) { c.Leaderboard.Size = 500 }, "size"},
		{"no timeout", func(c *Config) { c.Leaderboard.TimeoutMS = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
