package game

import (
	"context"
	"time"

	"github.com/lox/boothjack/internal/evaluator"
	"github.com/lox/boothjack/internal/gameid"
)

// Deal starts a round from the betting phase. In play mode the pending bet
// must be positive and covered by the wallet; it is deducted before the first
// card moves and is not refunded if the round is abandoned.
func (e *Engine) Deal(ctx context.Context) {
	if e.phase != PhaseBetting {
		return
	}
	mode := e.mode.Mode()
	switch mode {
	case ModeDisabled:
		return
	case ModePlay:
		if e.pendingBet <= 0 || e.pendingBet > e.money {
			return
		}
	}

	run := e.token.RunID()
	e.cues.PlayCue(CueBet)
	e.deck.Shuffle()
	e.cues.PlayCue(CueShuffle)
	e.phase = PhaseDealing
	e.baseBet = 0
	if mode == ModePlay {
		e.baseBet = e.pendingBet
	}
	// the stake now lives in the hand bets
	e.pendingBet = 0
	if mode == ModePlay {
		e.setMoney(e.money - e.baseBet)
	}

	e.roundID = gameid.Generate()
	e.dealer = hand{}
	e.dealerHidden = true
	e.dealerNatural = false
	e.hands = []hand{{}}
	e.bets = []int{e.baseBet}
	e.results = []HandResult{ResultNone}
	e.outcomes = []Outcome{OutcomeNone}
	e.payouts = []int{0}
	e.active = 0

	e.logger.Info("Round started", "round", e.roundID, "mode", mode, "bet", e.baseBet, "money", e.money)
	e.bus.Publish(RoundStartEvent{
		RoundID:   e.roundID,
		Mode:      mode,
		Bet:       e.baseBet,
		Money:     e.money,
		timestamp: time.Now(),
	})

	for _, seat := range []Seat{SeatPlayer, SeatDealer, SeatPlayer, SeatDealer} {
		if !e.dealTo(ctx, run, seat, 0, false) {
			return
		}
	}

	e.hands[0].faceUp = len(e.hands[0].cards)
	e.cues.PlayCue(CueFlip)
	e.dealer.faceUp = 1
	e.cues.PlayCue(CueFlip)

	playerNatural := evaluator.IsNatural(e.hands[0].cards)
	e.dealerNatural = evaluator.IsNatural(e.dealer.cards)
	if playerNatural || e.dealerNatural {
		e.resolveNaturals(playerNatural, mode)
		return
	}

	if e.canSplit(mode) {
		e.phase = PhaseResolvingSplit
		e.logger.Debug("Split offered", "round", e.roundID, "rank", e.hands[0].cards[0].Rank)
		return
	}
	e.phase = PhasePlaying
}

// AcceptSplit takes a pending split offer: a second bet equal to the first is
// charged, the pair becomes two hands, and each receives one more card.
func (e *Engine) AcceptSplit(ctx context.Context) {
	if e.phase != PhaseResolvingSplit {
		return
	}
	if e.mode.Mode() != ModePlay || e.money < e.baseBet {
		return
	}

	run := e.token.RunID()
	e.cues.PlayCue(CueBet)
	e.setMoney(e.money - e.baseBet)

	pair := e.hands[0].cards
	e.hands = []hand{
		{cards: pair[:1:1], faceUp: 1},
		{cards: pair[1:2:2], faceUp: 1},
	}
	e.bets = []int{e.baseBet, e.baseBet}
	e.results = []HandResult{ResultNone, ResultNone}
	e.outcomes = []Outcome{OutcomeNone, OutcomeNone}
	e.payouts = []int{0, 0}
	e.active = 0
	e.phase = PhaseDealing

	e.logger.Info("Pair split", "round", e.roundID, "bet", e.baseBet, "money", e.money)
	e.bus.Publish(SplitEvent{RoundID: e.roundID, Bet: e.baseBet, timestamp: time.Now()})

	for i := range e.hands {
		if !e.dealTo(ctx, run, SeatPlayer, i, true) {
			return
		}
	}
	e.phase = PhasePlaying
}

// DeclineSplit drops a pending split offer and plays the pair as one hand.
func (e *Engine) DeclineSplit() {
	if e.phase != PhaseResolvingSplit {
		return
	}
	e.active = 0
	e.phase = PhasePlaying
}

// Hit draws one card into the active hand.
func (e *Engine) Hit(ctx context.Context) {
	if e.phase != PhasePlaying {
		return
	}
	e.hit(ctx, e.token.RunID())
}

// Stand closes the active hand.
func (e *Engine) Stand(ctx context.Context) {
	if e.phase != PhasePlaying {
		return
	}
	e.finishHand(e.active, ResultStand)
	e.advance(ctx, e.token.RunID())
}

// Double doubles the active hand's bet, draws exactly one card and stands if
// that card did not bust the hand. Only two-card hands covered by the wallet
// may double.
func (e *Engine) Double(ctx context.Context) {
	if e.phase != PhasePlaying || e.mode.Mode() == ModeDisabled {
		return
	}
	i := e.active
	if len(e.hands[i].cards) != 2 || e.money < e.bets[i] {
		return
	}

	run := e.token.RunID()
	if bet := e.bets[i]; bet > 0 {
		e.cues.PlayCue(CueBet)
		e.setMoney(e.money - bet)
		e.bets[i] = bet * 2
	}
	e.logger.Debug("Double", "round", e.roundID, "hand", i, "bet", e.bets[i])

	if !e.hit(ctx, run) {
		return
	}
	if e.phase == PhasePlaying && e.results[i] == ResultNone {
		e.finishHand(i, ResultStand)
		e.advance(ctx, run)
	}
}

// hit reports whether the caller may keep mutating the round.
func (e *Engine) hit(ctx context.Context, run uint64) bool {
	i := e.active
	if !e.dealTo(ctx, run, SeatPlayer, i, true) {
		return false
	}
	if evaluator.IsBust(e.hands[i].cards) {
		e.finishHand(i, ResultBust)
		return e.advance(ctx, run)
	}
	return true
}

func (e *Engine) finishHand(i int, result HandResult) {
	e.results[i] = result
	value := e.hands[i].value()
	e.logger.Debug("Hand done", "round", e.roundID, "hand", i, "result", result, "value", value)
	e.bus.Publish(HandDoneEvent{
		RoundID:   e.roundID,
		Hand:      i,
		Result:    result,
		Value:     value,
		timestamp: time.Now(),
	})
}

// advance activates the first unfinished hand or hands over to the dealer.
func (e *Engine) advance(ctx context.Context, run uint64) bool {
	for i, r := range e.results {
		if r == ResultNone {
			e.active = i
			e.phase = PhasePlaying
			return true
		}
	}
	e.phase = PhaseDealer
	return e.dealerTurn(ctx, run)
}

// dealTo draws one card for a seat and waits for the presenter. It reports
// false once the round has been abandoned.
func (e *Engine) dealTo(ctx context.Context, run uint64, seat Seat, idx int, faceUp bool) bool {
	card := e.deck.Draw()
	h := &e.dealer
	if seat == SeatPlayer {
		h = &e.hands[idx]
	}
	h.cards = append(h.cards, card)
	if faceUp {
		h.faceUp = len(h.cards)
	}

	e.cues.PlayCue(CueThrow)
	e.bus.Publish(CardDealtEvent{
		RoundID:   e.roundID,
		Seat:      seat,
		Hand:      idx,
		Card:      card,
		Hidden:    !faceUp,
		timestamp: time.Now(),
	})

	d := Delivery{RoundID: e.roundID, Seat: seat, Hand: idx, Card: card, FaceUp: faceUp}
	if err := e.presenter.DeliverCard(ctx, d); err != nil {
		e.logger.Debug("Delivery interrupted", "round", e.roundID, "error", err)
		return false
	}
	if !e.current(run) {
		e.logger.Debug("Round abandoned", "round", e.roundID, "run", run)
		return false
	}
	return true
}

func (e *Engine) revealHole() {
	if !e.dealerHidden {
		return
	}
	e.dealerHidden = false
	e.dealer.faceUp = len(e.dealer.cards)
	e.cues.PlayCue(CueFlip)
	hole := e.dealer.cards[len(e.dealer.cards)-1]
	e.bus.Publish(HoleRevealedEvent{
		RoundID:   e.roundID,
		Card:      hole,
		Value:     e.dealer.value(),
		timestamp: time.Now(),
	})
}

func (e *Engine) resolveNaturals(playerNatural bool, mode Mode) {
	e.revealHole()
	e.results[0] = ResultStand

	var outcome Outcome
	credit := 0
	switch {
	case playerNatural && e.dealerNatural:
		outcome, credit = OutcomePush, e.bets[0]
	case playerNatural:
		outcome, credit = OutcomeBlackjack, 2*e.bets[0]
		e.cues.PlayCue(CueWin)
	default:
		outcome = OutcomeLose
		e.cues.PlayCue(CueLose)
	}
	e.outcomes[0] = outcome
	if mode == ModePlay && credit > 0 {
		e.payouts[0] = credit
		e.setMoney(e.money + credit)
	}
	e.finish(outcome, true, mode)
}

func (e *Engine) dealerTurn(ctx context.Context, run uint64) bool {
	e.revealHole()
	if !e.dealerNatural {
		for evaluator.DealerMustDraw(e.dealer.cards) {
			if !e.dealTo(ctx, run, SeatDealer, 0, true) {
				return false
			}
		}
	}
	e.settle()
	return true
}

// settle pays every hand against the final dealer value.
func (e *Engine) settle() {
	mode := e.mode.Mode()
	dealerValue := e.dealer.value()

	won := false
	for i := range e.hands {
		outcome := compare(e.results[i], e.hands[i].value(), dealerValue)
		e.outcomes[i] = outcome

		credit := 0
		switch outcome {
		case OutcomeWin:
			won = true
			credit = 2 * e.bets[i]
		case OutcomePush:
			credit = e.bets[i]
		}
		if mode == ModePlay && credit > 0 {
			e.payouts[i] = credit
			e.setMoney(e.money + credit)
		}
	}

	outcome := OutcomeLose
	if won {
		outcome = OutcomeWin
		e.cues.PlayCue(CueWin)
	} else {
		e.cues.PlayCue(CueLose)
	}
	e.finish(outcome, false, mode)
}

func compare(result HandResult, player, dealer int) Outcome {
	switch {
	case result == ResultBust:
		return OutcomeLose
	case dealer > evaluator.BustLimit, player > dealer:
		return OutcomeWin
	case player < dealer:
		return OutcomeLose
	default:
		return OutcomePush
	}
}

func (e *Engine) finish(outcome Outcome, natural bool, mode Mode) {
	e.phase = PhaseRoundOver
	summary := e.summary(outcome, natural, mode)
	e.logger.Info("Round over",
		"round", e.roundID,
		"outcome", outcome,
		"dealer", summary.DealerValue,
		"net", summary.Net(),
		"money", e.money)
	e.roundOver.RoundOver(summary)
	e.bus.Publish(RoundEndEvent{Summary: summary, timestamp: time.Now()})
}
