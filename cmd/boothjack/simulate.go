package main

import (
	"os"
	"runtime"
	"time"

	"github.com/lox/boothjack/internal/fileutil"
	"github.com/lox/boothjack/internal/randutil"
	"github.com/lox/boothjack/internal/simulator"
)

// SimulateCmd plays rounds with a fixed strategy and reports statistics
type SimulateCmd struct {
	Rounds   int           `default:"100000" help:"Number of rounds to simulate"`
	Workers  int           `help:"Parallel workers (default: number of CPUs)"`
	Strategy string        `default:"basic" enum:"basic,never-bust,dealer-mimic" help:"Player strategy (basic, never-bust, dealer-mimic)"`
	Bet      int           `default:"100" help:"Bet placed every round"`
	Seed     *int64        `help:"Deterministic RNG seed (optional)"`
	Timeout  time.Duration `default:"5m" help:"Abort the run after this long"`
	Output   string        `short:"o" type:"path" help:"Also write a JSON report to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger, err := g.logger(os.Stderr, "")
	if err != nil {
		return err
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	_, seed := randutil.Seed(c.Seed)

	sim, err := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Workers:  workers,
		Strategy: c.Strategy,
		Seed:     seed,
		Bet:      c.Bet,
		Timeout:  c.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	logger.Info("Starting simulation", "rounds", c.Rounds, "workers", workers, "strategy", c.Strategy, "seed", seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Info("Simulation complete", "duration", elapsed.Round(time.Millisecond))

	simulator.PrintSummary(os.Stdout, stats, c.Strategy)
	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, sim.NewReport(stats, elapsed)); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
