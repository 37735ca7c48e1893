package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/leaderboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("boothjack"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseCommands(t *testing.T) {
	cli, ctx := parse(t, "simulate", "--rounds", "500", "--strategy", "never-bust", "--seed", "9")
	assert.Equal(t, "simulate", ctx.Command())
	assert.Equal(t, 500, cli.Simulate.Rounds)
	assert.Equal(t, "never-bust", cli.Simulate.Strategy)
	require.NotNil(t, cli.Simulate.Seed)
	assert.Equal(t, int64(9), *cli.Simulate.Seed)

	cli, ctx = parse(t, "--debug", "--log-format", "json", "server", "--memory")
	assert.Equal(t, "server", ctx.Command())
	assert.True(t, cli.Debug)
	assert.Equal(t, "json", cli.LogFormat)
	assert.True(t, cli.Server.Memory)

	cli, _ = parse(t, "play", "--offline", "--no-color")
	assert.True(t, cli.Play.Offline)
	assert.True(t, cli.Play.NoColor)
	assert.Nil(t, cli.Play.Seed)
}

func TestParseRejectsUnknownStrategy(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"simulate", "--strategy", "martingale"})
	assert.Error(t, err)
}

func TestGlobalsLogger(t *testing.T) {
	var buf bytes.Buffer

	g := &Globals{LogFormat: "json"}
	logger, err := g.logger(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	logger.Warn("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	g = &Globals{Debug: true}
	logger, err = g.logger(&buf, "error")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	_, err = g.logger(&buf, "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestPrintBoard(t *testing.T) {
	var buf bytes.Buffer
	printBoard(&buf, nil)
	assert.Equal(t, "Leaderboard is empty\n", buf.String())

	buf.Reset()
	printBoard(&buf, []leaderboard.Entry{{Player: "ada", Score: 15000}, {Player: "bob", Score: 9000}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ada")
	assert.Contains(t, lines[1], "15000")
	assert.True(t, strings.HasPrefix(lines[2], "   2  bob"))
}
