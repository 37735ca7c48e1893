package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/boothjack/internal/leaderboard"
	"github.com/lox/boothjack/internal/randutil"
	"github.com/lox/boothjack/internal/session"
	"github.com/lox/boothjack/internal/tui"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
)

// PlayCmd runs the booth in the terminal
type PlayCmd struct {
	URL     string `help:"Leaderboard service URL (overrides config)"`
	Offline bool   `help:"Keep the leaderboard in memory for this process only"`
	NoColor bool   `name:"no-color" help:"Disable colors"`
	Seed    *int64 `help:"Deterministic shoe seed (optional)"`
	LogFile string `default:"boothjack.log" help:"Log file path (the terminal belongs to the UI)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger, err := g.logger(logFile, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	var submitter session.Submitter
	if c.Offline {
		submitter = leaderboard.Local{Store: leaderboard.NewMemoryStore(nil), Size: cfg.Leaderboard.Size}
	} else {
		url := cfg.Leaderboard.URL
		if c.URL != "" {
			url = c.URL
		}
		submitter = leaderboard.NewClient(url, cfg.Leaderboard.Timeout())
	}

	rng, seed := randutil.Seed(c.Seed)
	logger.Info("Starting booth",
		"seed", seed,
		"offline", c.Offline,
		"starting_money", cfg.Game.StartingMoney,
		"play_duration", cfg.Game.PlayDuration())

	model := tui.NewTUIModel(logger)
	bridge := tui.NewBridge(model, logger)
	booth := session.New(session.Config{
		StartingMoney:  cfg.Game.StartingMoney,
		PlayDuration:   cfg.Game.PlayDuration(),
		PracticeRounds: cfg.Game.PracticeRounds,
		DealDelay:      cfg.Game.DealDelay(),
		SubmitTimeout:  cfg.Leaderboard.Timeout(),
	},
		session.WithLogger(logger),
		session.WithRand(rng),
		session.WithSubmitter(submitter),
		session.WithListener(bridge),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		if err := booth.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	bridge.Start(booth)

	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	cancel()
	if err := grp.Wait(); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("running TUI: %w", runErr)
	}
	return nil
}
