// Package game implements the round state machine for fifteen-point
// blackjack against a single dealer.
//
// The main type is Engine, which owns the shoe, the dealer and player hands,
// the bets and the wallet, and moves a round through its phases:
//
//	betting -> dealing -> [resolvingSplit] -> playing -> dealer -> roundOver -> betting
//
// # Basic Usage
//
//	e := game.New(randutil.New(42), game.WithMoney(10000))
//	e.AdjustBet(500)
//	e.Deal(ctx)
//	if e.Phase() == game.PhasePlaying {
//	    e.Stand(ctx)
//	}
//	e.Proceed()
//
// Actions called in the wrong phase or mode are ignored; the engine never
// returns an error for them. Hosts are expected to offer only the actions in
// Snapshot().Actions.
//
// # Suspension and Cancellation
//
// Every card that leaves the shoe is handed to a Presenter, whose DeliverCard
// call is the point where a host paces animation. After each delivery the
// engine re-reads the host's run id (TokenSource). If it changed, or the
// presenter returned an error, the operation stops writing state and returns.
// Nothing is rolled back: a bet deducted before a cancelled deal stays
// deducted, and the host is expected to reset the session.
//
// The engine is not safe for concurrent use. Hosts drive it from a single
// goroutine; see package session for the command loop the terminal client
// uses.
package game
