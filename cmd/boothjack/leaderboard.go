package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/boothjack/internal/leaderboard"
)

// LeaderboardCmd prints the leaderboard, optionally following updates
type LeaderboardCmd struct {
	URL   string `help:"Leaderboard service URL (overrides config)"`
	Watch bool   `short:"w" help:"Keep printing the board whenever it changes"`
}

func (c *LeaderboardCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, err := g.logger(os.Stderr, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	url := cfg.Leaderboard.URL
	if c.URL != "" {
		url = c.URL
	}
	client := leaderboard.NewClient(url, cfg.Leaderboard.Timeout())

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	if !c.Watch {
		items, err := client.Top(ctx)
		if err != nil {
			return err
		}
		printBoard(os.Stdout, items)
		return nil
	}

	logger.Debug("Watching leaderboard", "url", url)
	err = client.Watch(ctx, func(items []leaderboard.Entry) {
		printBoard(os.Stdout, items)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printBoard(w io.Writer, items []leaderboard.Entry) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Leaderboard is empty")
		return
	}
	fmt.Fprintln(w, "Rank  Player                                    Score")
	for i, e := range items {
		fmt.Fprintf(w, "%4d  %-40s %6d\n", i+1, e.Player, e.Score)
	}
	fmt.Fprintln(w)
}
