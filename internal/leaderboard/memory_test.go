package leaderboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Player
	}
	return out
}

func TestMemoryStoreOrdersByScoreThenTime(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	store := NewMemoryStore(clock)

	for _, s := range []struct {
		player string
		score  int64
	}{
		{"ada", 12000},
		{"bob", 15000},
		{"cy", 12000},
		{"dee", 9000},
	} {
		_, err := store.Submit(ctx, s.player, s.score, DefaultSize)
		require.NoError(t, err)
		clock.Advance(time.Second).MustWait(ctx)
	}

	top, err := store.Top(ctx, DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "ada", "cy", "dee"}, players(top))
}

func TestMemoryStoreKeepsBestScorePerPlayer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(quartz.NewMock(t))

	res, err := store.Submit(ctx, "ada", 12000, DefaultSize)
	require.NoError(t, err)
	assert.True(t, res.Entered)
	assert.Equal(t, 1, res.Rank)

	res, err = store.Submit(ctx, "ada", 8000, DefaultSize)
	require.NoError(t, err)
	assert.False(t, res.Entered, "a worse score does not replace the best one")
	require.Len(t, res.Leaderboard, 1)
	assert.Equal(t, int64(12000), res.Leaderboard[0].Score)

	res, err = store.Submit(ctx, "ada", 14000, DefaultSize)
	require.NoError(t, err)
	assert.True(t, res.Entered)
	require.Len(t, res.Leaderboard, 1)
	assert.Equal(t, int64(14000), res.Leaderboard[0].Score)
}

func TestMemoryStoreTrimsToSize(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	store := NewMemoryStore(clock)

	for i, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := store.Submit(ctx, name, int64(10000+i*1000), DefaultSize)
		require.NoError(t, err)
		clock.Advance(time.Second).MustWait(ctx)
	}

	res, err := store.Submit(ctx, "low", 5000, DefaultSize)
	require.NoError(t, err)
	assert.False(t, res.Entered)
	assert.Zero(t, res.Rank)
	assert.Len(t, res.Leaderboard, DefaultSize)

	res, err = store.Submit(ctx, "tie", 10000, DefaultSize)
	require.NoError(t, err)
	assert.False(t, res.Entered, "ties lose to earlier scores")

	res, err = store.Submit(ctx, "mid", 12500, DefaultSize)
	require.NoError(t, err)
	assert.True(t, res.Entered)
	assert.Equal(t, 3, res.Rank)
	assert.Equal(t, []string{"e", "d", "mid", "c", "b"}, players(res.Leaderboard))
}

func TestMemoryStoreRejectsBadPlayer(t *testing.T) {
	store := NewMemoryStore(nil)
	_, err := store.Submit(context.Background(), "   ", 100, DefaultSize)
	assert.ErrorIs(t, err, ErrBadPlayer)
}

func TestNormalizePlayer(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  ada  ", want: "ada"},
		{in: "", wantErr: true},
		{in: "\t\n", wantErr: true},
		{in: strings.Repeat("x", 50), want: strings.Repeat("x", 40)},
		{in: strings.Repeat("é", 41), want: strings.Repeat("é", 40)},
	}
	for _, tt := range tests {
		got, err := NormalizePlayer(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrBadPlayer, "input %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLocalServesStoreInProcess(t *testing.T) {
	ctx := context.Background()
	local := Local{Store: NewMemoryStore(quartz.NewMock(t))}

	items, err := local.Top(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	res, err := local.Submit(ctx, "  ada ", 12000)
	require.NoError(t, err)
	assert.True(t, res.Entered)
	assert.Equal(t, 1, res.Rank)

	_, err = local.Submit(ctx, "   ", 100)
	assert.ErrorIs(t, err, ErrBadPlayer)

	_, err = Local{}.Top(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
