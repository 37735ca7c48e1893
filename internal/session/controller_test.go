package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/leaderboard"
	"github.com/lox/boothjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submission struct {
	player string
	score  int64
}

type fakeSubmitter struct {
	mu          sync.Mutex
	submissions []submission
	result      leaderboard.SubmitResult
	err         error
	top         []leaderboard.Entry
	release     chan struct{}
}

func (f *fakeSubmitter) Top(context.Context) ([]leaderboard.Entry, error) {
	return f.top, nil
}

func (f *fakeSubmitter) Submit(ctx context.Context, player string, score int64) (leaderboard.SubmitResult, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return leaderboard.SubmitResult{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission{player, score})
	return f.result, f.err
}

func (f *fakeSubmitter) calls() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission(nil), f.submissions...)
}

type harness struct {
	*Controller
	clock *quartz.Mock
	ctx   context.Context
	views chan View
}

func testConfig() Config {
	return Config{
		StartingMoney:  10000,
		PlayDuration:   60 * time.Second,
		PracticeRounds: 0,
		SubmitTimeout:  time.Second,
	}
}

// newHarness runs a controller whose shoe deals cards in order.
func newHarness(t *testing.T, cfg Config, cards string, sub Submitter) *harness {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	h := &harness{
		clock: quartz.NewMock(t),
		ctx:   ctx,
		views: make(chan View, 256),
	}
	opts := []Option{
		WithClock(h.clock),
		WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		WithListener(ListenerFunc(func(v View) {
			select {
			case h.views <- v:
			default:
			}
		})),
		WithEngineOptions(game.WithDeck(deck.Stacked(randutil.New(3), deck.MustParseCards(cards)...))),
	}
	if sub != nil {
		opts = append(opts, WithSubmitter(sub))
	}
	h.Controller = New(cfg, opts...)

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) flush(t *testing.T) View {
	t.Helper()
	require.NoError(t, h.Flush(h.ctx))
	return h.View()
}

// waitFor flushes until cond holds for the current view.
func (h *harness) waitFor(t *testing.T, cond func(View) bool) View {
	t.Helper()
	require.Eventually(t, func() bool {
		if err := h.Flush(h.ctx); err != nil {
			return false
		}
		return cond(h.View())
	}, 5*time.Second, 5*time.Millisecond)
	return h.View()
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	h.clock.Advance(time.Second).MustWait(h.ctx)
}

func (h *harness) startPlay(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, h.SetName(name))
	require.Equal(t, StagePrestart, h.flush(t).Stage)
	h.Start()
	require.Equal(t, StagePlay, h.flush(t).Stage)
}

func TestSetNameRejectsBlank(t *testing.T) {
	h := newHarness(t, testConfig(), "", nil)

	assert.ErrorIs(t, h.SetName("   "), ErrEmptyName)
	assert.Equal(t, StageName, h.flush(t).Stage)
}

func TestPracticeRoundsLeadToPrestart(t *testing.T) {
	cfg := testConfig()
	cfg.PracticeRounds = 1
	h := newHarness(t, cfg, "3 2 5 6 6", nil)

	require.NoError(t, h.SetName(" ada "))
	v := h.flush(t)
	assert.Equal(t, StagePractice, v.Stage)
	assert.Equal(t, "ada", v.Player)
	assert.Equal(t, 1, v.PracticeLeft)
	assert.NotEmpty(t, v.SessionID)

	h.AdjustBet(500)
	h.Deal()
	v = h.flush(t)
	assert.Equal(t, game.PhasePlaying, v.Table.Phase)
	assert.Equal(t, game.ModePractice, v.Table.Mode)
	assert.Zero(t, v.Table.PendingBet)

	h.Stand()
	v = h.flush(t)
	assert.Equal(t, game.PhaseRoundOver, v.Table.Phase)
	assert.Equal(t, 0, v.PracticeLeft)
	assert.Equal(t, 10000, v.Table.Money)
	assert.NotEmpty(t, v.Log)

	h.Proceed()
	v = h.flush(t)
	assert.Equal(t, StagePrestart, v.Stage)
	assert.Equal(t, game.PhaseBetting, v.Table.Phase)
}

func TestActionsIgnoredBeforeStart(t *testing.T) {
	h := newHarness(t, testConfig(), "3 2 5 6", nil)

	h.AdjustBet(1000)
	h.Deal()
	v := h.flush(t)
	assert.Equal(t, StageName, v.Stage)
	assert.Equal(t, game.PhaseBetting, v.Table.Phase)
	assert.Zero(t, v.Table.PendingBet)
	assert.Empty(t, v.Table.Actions)
}

func TestCountdownTicksOncePerSecond(t *testing.T) {
	cfg := testConfig()
	cfg.PlayDuration = 3 * time.Second
	sub := &fakeSubmitter{top: []leaderboard.Entry{{Player: "bob", Score: 15000}}}
	h := newHarness(t, cfg, "", sub)

	h.startPlay(t, "ada")
	assert.Equal(t, 3*time.Second, h.View().Remaining)

	h.tick(t)
	v := h.waitFor(t, func(v View) bool { return v.Remaining == 2*time.Second })
	assert.False(t, v.TimeUp)

	h.waitFor(t, func(v View) bool { return len(v.Leaderboard) == 1 })
}

func TestTimeUpWhileBettingFinalizesImmediately(t *testing.T) {
	cfg := testConfig()
	cfg.PlayDuration = 2 * time.Second
	sub := &fakeSubmitter{result: leaderboard.SubmitResult{
		Entered:     true,
		Rank:        1,
		Leaderboard: []leaderboard.Entry{{Player: "ada", Score: 10000}},
	}}
	h := newHarness(t, cfg, "", sub)
	h.startPlay(t, "ada")

	h.tick(t)
	h.waitFor(t, func(v View) bool { return v.Remaining == time.Second })
	h.tick(t)

	v := h.waitFor(t, func(v View) bool { return v.Result != nil && v.Result.Submitted })
	assert.Equal(t, StageResult, v.Stage)
	assert.True(t, v.TimeUp)
	assert.Equal(t, FinishTimeUp, v.Result.Reason)
	assert.Equal(t, 10000, v.Result.Money)
	assert.True(t, v.Result.Entered)
	assert.Equal(t, 1, v.Result.Rank)
	assert.Equal(t, []submission{{"ada", 10000}}, sub.calls())
}

func TestTimeUpMidRoundWaitsForProceed(t *testing.T) {
	cfg := testConfig()
	cfg.PlayDuration = time.Second
	sub := &fakeSubmitter{}
	h := newHarness(t, cfg, "3 2 5 6 6", sub)
	h.startPlay(t, "ada")

	h.AdjustBet(1000)
	h.Deal()
	require.Equal(t, game.PhasePlaying, h.flush(t).Table.Phase)

	h.tick(t)
	v := h.waitFor(t, func(v View) bool { return v.TimeUp })
	assert.Equal(t, StagePlay, v.Stage)

	h.Stand()
	v = h.flush(t)
	assert.Equal(t, game.PhaseRoundOver, v.Table.Phase)
	assert.Equal(t, 9000, v.Table.Money)
	assert.Equal(t, StagePlay, v.Stage)

	h.Proceed()
	v = h.waitFor(t, func(v View) bool { return v.Result != nil && v.Result.Submitted })
	assert.Equal(t, StageResult, v.Stage)
	assert.Equal(t, 9000, v.Result.Money)
	assert.Equal(t, []submission{{"ada", 9000}}, sub.calls())
}

func TestBrokeEndsSessionAfterProceed(t *testing.T) {
	cfg := testConfig()
	cfg.StartingMoney = 1000
	h := newHarness(t, cfg, "3 2 5 6 6", nil)
	h.startPlay(t, "ada")

	h.BetAll()
	h.Deal()
	h.Stand()
	v := h.flush(t)
	assert.Equal(t, game.PhaseRoundOver, v.Table.Phase)
	assert.Zero(t, v.Table.Money)

	h.Proceed()
	v = h.flush(t)
	require.NotNil(t, v.Result)
	assert.Equal(t, StageResult, v.Stage)
	assert.Equal(t, FinishBroke, v.Result.Reason)
	assert.Zero(t, v.Result.Money)
	assert.False(t, v.Result.Submitted)
	assert.NotEmpty(t, v.Result.SubmitError)
}

func TestSubmitFailureIsReported(t *testing.T) {
	cfg := testConfig()
	cfg.StartingMoney = 1000
	sub := &fakeSubmitter{err: errors.New("db_unavailable")}
	h := newHarness(t, cfg, "3 2 5 6 6", sub)
	h.startPlay(t, "ada")

	h.BetAll()
	h.Deal()
	h.Stand()
	h.Proceed()

	v := h.waitFor(t, func(v View) bool { return v.Result != nil && v.Result.SubmitError != "" })
	assert.False(t, v.Result.Submitted)
	assert.Equal(t, "db_unavailable", v.Result.SubmitError)
}

func TestReturnDropsLateSubmitResult(t *testing.T) {
	cfg := testConfig()
	cfg.StartingMoney = 1000
	cfg.SubmitTimeout = 5 * time.Second
	sub := &fakeSubmitter{
		release: make(chan struct{}),
		result:  leaderboard.SubmitResult{Entered: true, Rank: 1},
	}
	h := newHarness(t, cfg, "3 2 5 6 6", sub)
	h.startPlay(t, "ada")

	h.BetAll()
	h.Deal()
	h.Stand()
	h.Proceed()
	require.Equal(t, StageResult, h.flush(t).Stage)

	h.Return()
	v := h.flush(t)
	assert.Equal(t, StageName, v.Stage)
	assert.Nil(t, v.Result)

	close(sub.release)
	require.Eventually(t, func() bool { return len(sub.calls()) == 1 }, 5*time.Second, 5*time.Millisecond)
	v = h.flush(t)
	assert.Equal(t, StageName, v.Stage)
	assert.Nil(t, v.Result)
}

func TestReturnCancelsDealInFlight(t *testing.T) {
	cfg := testConfig()
	cfg.DealDelay = time.Second
	h := newHarness(t, cfg, "3 2 5 6 6", nil)
	h.startPlay(t, "ada")
	before := h.RunID()

	h.AdjustBet(1000)
	h.Deal()
	for v := range h.views {
		if v.Table.Phase == game.PhaseDealing {
			break
		}
	}

	h.Return()
	v := h.flush(t)
	assert.Greater(t, h.RunID(), before)
	assert.Equal(t, StageName, v.Stage)
	assert.Equal(t, game.PhaseBetting, v.Table.Phase)
	assert.Equal(t, 10000, v.Table.Money)
	assert.Empty(t, v.Player)
}

func TestStaleCommandsAreDropped(t *testing.T) {
	cfg := testConfig()
	cfg.DealDelay = time.Second
	h := newHarness(t, cfg, "3 2 5 6 6", nil)
	h.startPlay(t, "ada")

	h.AdjustBet(1000)
	h.Deal()
	for v := range h.views {
		if v.Table.Phase == game.PhaseDealing {
			break
		}
	}

	// queued behind the blocked deal, then invalidated by Return
	h.Hit()
	h.Return()
	require.NoError(t, h.SetName("bob"))
	v := h.flush(t)
	assert.Equal(t, StagePrestart, v.Stage)
	assert.Equal(t, "bob", v.Player)
	assert.Equal(t, game.PhaseBetting, v.Table.Phase)
	assert.Empty(t, v.Table.Hands[0].Cards)
}
