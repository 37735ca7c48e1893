// Package config loads the HCL file shared by the server and the terminal
// client. Every block is optional; anything left out falls back to Default.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete configuration file.
type Config struct {
	Server      ServerSettings
	Game        GameSettings
	Leaderboard LeaderboardSettings
}

// ServerSettings configures the leaderboard HTTP service.
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	DatabaseURL string `hcl:"database_url,optional"`
	LogLevel    string `hcl:"log_level,optional"`
}

// GameSettings configures a play session.
type GameSettings struct {
	StartingMoney  int `hcl:"starting_money,optional"`
	PlaySeconds    int `hcl:"play_seconds,optional"`
	PracticeRounds int `hcl:"practice_rounds,optional"`
	DealDelayMS    int `hcl:"deal_delay_ms,optional"`
}

// LeaderboardSettings configures the leaderboard client.
type LeaderboardSettings struct {
	URL       string `hcl:"url,optional"`
	Size      int    `hcl:"size,optional"`
	TimeoutMS int    `hcl:"timeout_ms,optional"`
}

// fileConfig mirrors Config with optional blocks.
type fileConfig struct {
	Server      *ServerSettings      `hcl:"server,block"`
	Game        *GameSettings        `hcl:"game,block"`
	Leaderboard *LeaderboardSettings `hcl:"leaderboard,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  ":8080",
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingMoney:  10000,
			PlaySeconds:    120,
			PracticeRounds: 2,
			DealDelayMS:    430,
		},
		Leaderboard: LeaderboardSettings{
			URL:       "http://localhost:8080",
			Size:      5,
			TimeoutMS: 5000,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if raw.Server != nil {
		cfg.Server.merge(*raw.Server)
	}
	if raw.Game != nil {
		cfg.Game.merge(*raw.Game)
	}
	if raw.Leaderboard != nil {
		cfg.Leaderboard.merge(*raw.Leaderboard)
	}
	return cfg, nil
}

func (s *ServerSettings) merge(o ServerSettings) {
	if o.Address != "" {
		s.Address = o.Address
	}
	if o.DatabaseURL != "" {
		s.DatabaseURL = o.DatabaseURL
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
}

func (g *GameSettings) merge(o GameSettings) {
	if o.StartingMoney != 0 {
		g.StartingMoney = o.StartingMoney
	}
	if o.PlaySeconds != 0 {
		g.PlaySeconds = o.PlaySeconds
	}
	if o.PracticeRounds != 0 {
		g.PracticeRounds = o.PracticeRounds
	}
	if o.DealDelayMS != 0 {
		g.DealDelayMS = o.DealDelayMS
	}
}

func (l *LeaderboardSettings) merge(o LeaderboardSettings) {
	if o.URL != "" {
		l.URL = o.URL
	}
	if o.Size != 0 {
		l.Size = o.Size
	}
	if o.TimeoutMS != 0 {
		l.TimeoutMS = o.TimeoutMS
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server: address is required")
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server: invalid log level %q", c.Server.LogLevel)
	}

	if c.Game.StartingMoney <= 0 {
		return fmt.Errorf("game: starting money must be positive")
	}
	if c.Game.PlaySeconds <= 0 {
		return fmt.Errorf("game: play seconds must be positive")
	}
	if c.Game.PracticeRounds < 0 {
		return fmt.Errorf("game: practice rounds cannot be negative")
	}
	if c.Game.DealDelayMS < 0 {
		return fmt.Errorf("game: deal delay cannot be negative")
	}

	if c.Leaderboard.Size < 1 || c.Leaderboard.Size > 100 {
		return fmt.Errorf("leaderboard: size must be between 1 and 100")
	}
	if c.Leaderboard.TimeoutMS <= 0 {
		return fmt.Errorf("leaderboard: timeout must be positive")
	}
	return nil
}

// PlayDuration returns the scored session length.
func (g GameSettings) PlayDuration() time.Duration {
	return time.Duration(g.PlaySeconds) * time.Second
}

// DealDelay returns the pause after each card delivery.
func (g GameSettings) DealDelay() time.Duration {
	return time.Duration(g.DealDelayMS) * time.Millisecond
}

// Timeout returns the leaderboard request timeout.
func (l LeaderboardSettings) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}
