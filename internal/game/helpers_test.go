package game

import (
	"context"
	"testing"

	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/randutil"
)

// testTable wires an engine to recording collaborators.
type testTable struct {
	*Engine

	runID      uint64
	mode       Mode
	moneyCalls []int
	summaries  []RoundSummary
	cueLog     []Cue
	deliveries []Delivery
	onDeliver  func(Delivery) error
}

type testTableOption func(*testTable, *[]Option)

func withMode(m Mode) testTableOption {
	return func(tt *testTable, _ *[]Option) { tt.mode = m }
}

func withOnDeliver(fn func(*testTable, Delivery) error) testTableOption {
	return func(tt *testTable, _ *[]Option) {
		tt.onDeliver = func(d Delivery) error { return fn(tt, d) }
	}
}

// newTestTable deals cards in the given order: player, dealer, player,
// dealer, then every later draw.
func newTestTable(t *testing.T, money int, cards string, opts ...testTableOption) *testTable {
	t.Helper()
	tt := &testTable{mode: ModePlay}
	var engineOpts []Option
	for _, opt := range opts {
		opt(tt, &engineOpts)
	}

	engineOpts = append(engineOpts,
		WithDeck(deck.Stacked(randutil.New(7), deck.MustParseCards(cards)...)),
		WithMoney(money),
		WithToken(TokenFunc(func() uint64 { return tt.runID })),
		WithMode(ModeFunc(func() Mode { return tt.mode })),
		WithMoneySink(MoneyFunc(func(m int) { tt.moneyCalls = append(tt.moneyCalls, m) })),
		WithRoundOver(RoundOverFunc(func(s RoundSummary) { tt.summaries = append(tt.summaries, s) })),
		WithCues(CueFunc(func(c Cue) { tt.cueLog = append(tt.cueLog, c) })),
		WithPresenter(PresenterFunc(func(ctx context.Context, d Delivery) error {
			tt.deliveries = append(tt.deliveries, d)
			if tt.onDeliver != nil {
				if err := tt.onDeliver(d); err != nil {
					return err
				}
			}
			return ctx.Err()
		})),
	)
	tt.Engine = New(nil, engineOpts...)
	return tt
}

func (tt *testTable) bet(t *testing.T, amount int) {
	t.Helper()
	tt.AdjustBet(amount)
	if tt.PendingBet() != amount {
		t.Fatalf("pending bet = %d, want %d", tt.PendingBet(), amount)
	}
}

func ranks(cards []deck.Card) []deck.Rank {
	out := make([]deck.Rank, len(cards))
	for i, c := range cards {
		out[i] = c.Rank
	}
	return out
}

func countCues(cues []Cue, want Cue) int {
	n := 0
	for _, c := range cues {
		if c == want {
			n++
		}
	}
	return n
}
