package game

import (
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/evaluator"
)

// hand is an ordered run of cards of which the first faceUp are visible.
type hand struct {
	cards  []deck.Card
	faceUp int
}

func (h *hand) value() int { return evaluator.Value(h.cards) }

// Engine is the round state machine. One Engine serves a whole session.
type Engine struct {
	logger *log.Logger
	deck   *deck.Deck
	bus    EventBus

	cues      CuePlayer
	token     TokenSource
	mode      ModeSource
	moneySink MoneySink
	roundOver RoundOverSink
	presenter Presenter

	money      int
	pendingBet int
	baseBet    int
	phase      Phase
	roundID    string

	dealer        hand
	dealerHidden  bool
	dealerNatural bool

	hands    []hand
	bets     []int
	results  []HandResult
	outcomes []Outcome
	payouts  []int
	active   int
}

// New creates an engine in the betting phase. The RNG seeds the shoe unless
// WithDeck supplies one; it is required so that randomness stays explicit.
func New(rng *rand.Rand, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.deck == nil {
		if rng == nil {
			panic("rng is required when no deck is supplied")
		}
		cfg.deck = deck.New(rng)
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}

	e := &Engine{
		logger:    cfg.logger.WithPrefix("engine"),
		deck:      cfg.deck,
		bus:       cfg.bus,
		cues:      cfg.cues,
		token:     cfg.token,
		mode:      cfg.mode,
		moneySink: cfg.moneySink,
		roundOver: cfg.roundOver,
		presenter: cfg.presenter,
		money:     max(cfg.money, 0),
	}
	e.ResetToBetting()
	return e
}

// Events returns the bus the engine publishes on.
func (e *Engine) Events() EventBus {
	return e.bus
}

// Money returns the wallet total.
func (e *Engine) Money() int {
	return e.money
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// PendingBet returns the bet being assembled in the betting phase.
func (e *Engine) PendingBet() int {
	return e.pendingBet
}

// RoundID returns the id of the current or most recent round.
func (e *Engine) RoundID() string {
	return e.roundID
}

// ResetSession starts a fresh session with the given wallet. It may be called
// in any phase and abandons whatever round was live. Negative amounts are
// treated as an empty wallet.
func (e *Engine) ResetSession(money int) {
	e.money = max(money, 0)
	e.pendingBet = 0
	e.baseBet = 0
	e.moneySink.MoneyChanged(e.money)
	e.ResetToBetting()
	e.logger.Debug("Session reset", "money", e.money)
}

// ResetToBetting clears all round state and returns to the betting phase.
// Money is untouched.
func (e *Engine) ResetToBetting() {
	e.phase = PhaseBetting
	e.baseBet = 0
	e.pendingBet = 0
	e.dealer = hand{}
	e.dealerHidden = true
	e.dealerNatural = false
	e.hands = []hand{{}}
	e.bets = nil
	e.results = nil
	e.outcomes = nil
	e.payouts = nil
	e.active = 0
}

// AdjustBet moves the pending bet by delta. Only legal while betting in play
// mode; changes that would go below zero or above the wallet are ignored.
func (e *Engine) AdjustBet(delta int) {
	if e.phase != PhaseBetting || e.mode.Mode() != ModePlay {
		return
	}
	next := e.pendingBet + delta
	if next < 0 || next > e.money {
		return
	}
	e.cues.PlayCue(CueBet)
	e.pendingBet = next
}

// Proceed leaves the round-over phase for a new betting phase.
func (e *Engine) Proceed() {
	if e.phase != PhaseRoundOver {
		return
	}
	e.ResetToBetting()
}

func (e *Engine) setMoney(money int) {
	e.money = money
	e.moneySink.MoneyChanged(money)
}

func (e *Engine) current(run uint64) bool {
	return e.token.RunID() == run
}

func (e *Engine) canSplit(mode Mode) bool {
	if mode != ModePlay || len(e.hands) != 1 || len(e.hands[0].cards) != 2 {
		return false
	}
	first, second := e.hands[0].cards[0], e.hands[0].cards[1]
	return first.Rank == second.Rank && e.baseBet > 0 && e.money >= e.baseBet
}

// Actions lists what the player may do right now.
func (e *Engine) Actions() []Action {
	mode := e.mode.Mode()
	switch e.phase {
	case PhaseBetting:
		switch mode {
		case ModePlay:
			actions := []Action{ActionBet}
			if e.pendingBet > 0 && e.pendingBet <= e.money {
				actions = append(actions, ActionDeal)
			}
			return actions
		case ModePractice:
			return []Action{ActionDeal}
		}
	case PhaseResolvingSplit:
		return []Action{ActionSplit, ActionDeclineSplit}
	case PhasePlaying:
		actions := []Action{ActionHit, ActionStand}
		if e.canDouble() {
			actions = append(actions, ActionDouble)
		}
		return actions
	case PhaseRoundOver:
		return []Action{ActionProceed}
	}
	return nil
}

func (e *Engine) canDouble() bool {
	i := e.active
	return e.phase == PhasePlaying && len(e.hands[i].cards) == 2 && e.money >= e.bets[i]
}

// CardView is a card as a presenter may show it. Hidden cards carry no rank.
type CardView struct {
	Card   deck.Card `json:"card"`
	FaceUp bool      `json:"faceUp"`
}

// HandView is one player hand as seen from outside the engine.
type HandView struct {
	Cards   []CardView `json:"cards"`
	Value   int        `json:"value"`
	Bet     int        `json:"bet"`
	Result  HandResult `json:"result"`
	Outcome Outcome    `json:"outcome,omitempty"`
	Payout  int        `json:"payout"`
	Active  bool       `json:"active"`
}

// Snapshot is an immutable copy of the table for presenters.
type Snapshot struct {
	RoundID       string     `json:"roundId"`
	Phase         Phase      `json:"phase"`
	Mode          Mode       `json:"mode"`
	Money         int        `json:"money"`
	PendingBet    int        `json:"pendingBet"`
	Dealer        []CardView `json:"dealer"`
	DealerValue   int        `json:"dealerValue"`
	DealerHidden  bool       `json:"dealerHidden"`
	Hands         []HandView `json:"hands"`
	ActiveHand    int        `json:"activeHand"`
	DeckRemaining int        `json:"deckRemaining"`
	Actions       []Action   `json:"actions"`
}

// TableBet is the amount shown in the bet box: the pending bet between
// rounds, the sum of live bets during one.
func (s Snapshot) TableBet() int {
	if s.Phase == PhaseBetting || s.Phase == PhaseRoundOver {
		return s.PendingBet
	}
	total := 0
	for _, h := range s.Hands {
		total += h.Bet
	}
	return total
}

func viewCards(h hand) []CardView {
	views := make([]CardView, len(h.cards))
	for i, c := range h.cards {
		if i < h.faceUp {
			views[i] = CardView{Card: c, FaceUp: true}
		}
	}
	return views
}

// Snapshot copies the visible state of the table.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		RoundID:       e.roundID,
		Phase:         e.phase,
		Mode:          e.mode.Mode(),
		Money:         e.money,
		PendingBet:    e.pendingBet,
		Dealer:        viewCards(e.dealer),
		DealerValue:   evaluator.Value(e.dealer.cards[:e.dealer.faceUp]),
		DealerHidden:  e.dealerHidden,
		ActiveHand:    e.active,
		DeckRemaining: e.deck.Remaining(),
		Actions:       e.Actions(),
	}
	for i, h := range e.hands {
		hv := HandView{
			Cards:  viewCards(h),
			Value:  evaluator.Value(h.cards[:h.faceUp]),
			Active: e.phase == PhasePlaying && i == e.active,
		}
		if i < len(e.bets) {
			hv.Bet = e.bets[i]
		}
		if i < len(e.results) {
			hv.Result = e.results[i]
		}
		if i < len(e.outcomes) {
			hv.Outcome = e.outcomes[i]
			hv.Payout = e.payouts[i]
		}
		s.Hands = append(s.Hands, hv)
	}
	return s
}

// HandSummary is the settled state of one player hand.
type HandSummary struct {
	Cards   []deck.Card `json:"cards"`
	Value   int         `json:"value"`
	Bet     int         `json:"bet"`
	Result  HandResult  `json:"result"`
	Outcome Outcome     `json:"outcome"`
	Payout  int         `json:"payout"`
}

// RoundSummary is delivered once per finished round.
type RoundSummary struct {
	RoundID     string        `json:"roundId"`
	Money       int           `json:"money"`
	Phase       Phase         `json:"phase"`
	Outcome     Outcome       `json:"outcome"`
	Mode        Mode          `json:"mode"`
	Natural     bool          `json:"natural"`
	Dealer      []deck.Card   `json:"dealer"`
	DealerValue int           `json:"dealerValue"`
	Hands       []HandSummary `json:"hands"`
}

// Wagered returns the total amount bet across all hands.
func (s RoundSummary) Wagered() int {
	total := 0
	for _, h := range s.Hands {
		total += h.Bet
	}
	return total
}

// Net returns payouts minus bets.
func (s RoundSummary) Net() int {
	net := 0
	for _, h := range s.Hands {
		net += h.Payout - h.Bet
	}
	return net
}

func (e *Engine) summary(outcome Outcome, natural bool, mode Mode) RoundSummary {
	s := RoundSummary{
		RoundID:     e.roundID,
		Money:       e.money,
		Phase:       e.phase,
		Outcome:     outcome,
		Mode:        mode,
		Natural:     natural,
		Dealer:      slices.Clone(e.dealer.cards),
		DealerValue: e.dealer.value(),
	}
	for i, h := range e.hands {
		s.Hands = append(s.Hands, HandSummary{
			Cards:   slices.Clone(h.cards),
			Value:   h.value(),
			Bet:     e.bets[i],
			Result:  e.results[i],
			Outcome: e.outcomes[i],
			Payout:  e.payouts[i],
		})
	}
	return s
}
