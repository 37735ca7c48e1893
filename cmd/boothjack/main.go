package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Server      ServerCmd        `cmd:"" help:"Run the leaderboard service"`
	Play        PlayCmd          `cmd:"" help:"Run the booth in this terminal"`
	Simulate    SimulateCmd      `cmd:"" help:"Play many rounds with a fixed strategy and report statistics"`
	Leaderboard LeaderboardCmd   `cmd:"" help:"Show the current leaderboard"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("boothjack"),
		kong.Description("Booth Blackjack: a timed fifteen-point blackjack booth with a shared leaderboard"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
