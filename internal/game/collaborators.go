package game

import (
	"context"

	"github.com/lox/boothjack/internal/deck"
)

// CuePlayer plays named sound cues. Failures are the player's problem; the
// engine never waits on or inspects them.
type CuePlayer interface {
	PlayCue(cue Cue)
}

// CueFunc adapts a function to CuePlayer.
type CueFunc func(Cue)

func (f CueFunc) PlayCue(cue Cue) { f(cue) }

// TokenSource returns the host's current run id. The engine only reads it.
type TokenSource interface {
	RunID() uint64
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() uint64

func (f TokenFunc) RunID() uint64 { return f() }

// ModeSource reports the mode in force. It is consulted before every action
// that can move money.
type ModeSource interface {
	Mode() Mode
}

// ModeFunc adapts a function to ModeSource.
type ModeFunc func() Mode

func (f ModeFunc) Mode() Mode { return f() }

// MoneySink is told the new wallet total after every change.
type MoneySink interface {
	MoneyChanged(money int)
}

// MoneyFunc adapts a function to MoneySink.
type MoneyFunc func(int)

func (f MoneyFunc) MoneyChanged(money int) { f(money) }

// RoundOverSink receives one summary per finished round.
type RoundOverSink interface {
	RoundOver(summary RoundSummary)
}

// RoundOverFunc adapts a function to RoundOverSink.
type RoundOverFunc func(RoundSummary)

func (f RoundOverFunc) RoundOver(summary RoundSummary) { f(summary) }

// Delivery describes one card travelling from the shoe to a hand.
type Delivery struct {
	RoundID string
	Seat    Seat
	Hand    int // player hand index; always 0 for the dealer
	Card    deck.Card
	FaceUp  bool
}

// Presenter shows a card being dealt. DeliverCard blocks until the host is
// ready for the next card; returning an error abandons the operation.
type Presenter interface {
	DeliverCard(ctx context.Context, d Delivery) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(context.Context, Delivery) error

func (f PresenterFunc) DeliverCard(ctx context.Context, d Delivery) error { return f(ctx, d) }

// Defaults used when the host supplies nothing.
var (
	noCues       CuePlayer     = CueFunc(func(Cue) {})
	fixedToken   TokenSource   = TokenFunc(func() uint64 { return 0 })
	alwaysPlay   ModeSource    = ModeFunc(func() Mode { return ModePlay })
	noMoneySink  MoneySink     = MoneyFunc(func(int) {})
	noRoundOver  RoundOverSink = RoundOverFunc(func(RoundSummary) {})
	instantCards Presenter     = PresenterFunc(func(ctx context.Context, _ Delivery) error { return ctx.Err() })
)
