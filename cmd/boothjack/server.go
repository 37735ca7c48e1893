package main

import (
	"context"
	"net"
	"os"

	"github.com/coder/quartz"
	"github.com/lox/boothjack/internal/leaderboard"
)

// ServerCmd runs the leaderboard HTTP service
type ServerCmd struct {
	Addr        string `help:"Listen address (overrides config)"`
	Port        string `env:"PORT" help:"Listen port, used when --addr is not set"`
	DatabaseURL string `name:"database-url" env:"DATABASE_URL" help:"Postgres connection string (overrides config)"`
	Memory      bool   `help:"Keep the leaderboard in memory instead of Postgres"`
}

func (c *ServerCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, err := g.logger(os.Stderr, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	addr := cfg.Server.Address
	switch {
	case c.Addr != "":
		addr = c.Addr
	case c.Port != "":
		addr = net.JoinHostPort("", c.Port)
	}
	databaseURL := cfg.Server.DatabaseURL
	if c.DatabaseURL != "" {
		databaseURL = c.DatabaseURL
	}

	var pg *leaderboard.PostgresStore
	var open leaderboard.StoreOpener
	switch {
	case c.Memory:
		open = func(context.Context) (leaderboard.Store, error) {
			return leaderboard.NewMemoryStore(quartz.NewReal()), nil
		}
	case databaseURL != "":
		open = func(ctx context.Context) (leaderboard.Store, error) {
			store, err := leaderboard.OpenPostgres(ctx, databaseURL, logger)
			if err != nil {
				return nil, err
			}
			pg = store
			return store, nil
		}
	default:
		logger.Warn("No database configured, leaderboard API will answer 503 (use --memory or DATABASE_URL)")
	}

	logger.Info("Starting Boothjack leaderboard",
		"address", addr,
		"size", cfg.Leaderboard.Size,
		"memory", c.Memory,
		"postgres", databaseURL != "")

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	srv := leaderboard.NewServer(addr, cfg.Leaderboard.Size, logger)
	err = srv.ListenAndServe(ctx, open)
	if pg != nil {
		pg.Close()
	}
	return err
}
