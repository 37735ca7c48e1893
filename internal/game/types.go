package game

import "fmt"

// Phase is a step of the round state machine.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseResolvingSplit
	PhasePlaying
	PhaseDealer
	PhaseRoundOver
)

func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhaseResolvingSplit:
		return "resolvingSplit"
	case PhasePlaying:
		return "playing"
	case PhaseDealer:
		return "dealer"
	case PhaseRoundOver:
		return "roundOver"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Mode decides whether money moves.
type Mode int

const (
	// ModePlay enforces bets and money accounting.
	ModePlay Mode = iota
	// ModePractice deals with a zero bet and never touches money.
	ModePractice
	// ModeDisabled rejects dealing and betting entirely.
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModePlay:
		return "play"
	case ModePractice:
		return "practice"
	case ModeDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// HandResult is the terminal tag of a player hand while the round is live.
type HandResult int

const (
	ResultNone HandResult = iota
	ResultBust
	ResultStand
)

func (r HandResult) String() string {
	switch r {
	case ResultBust:
		return "bust"
	case ResultStand:
		return "stand"
	default:
		return ""
	}
}

// Outcome is how a hand, or a whole round, settled.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
)

// Action is something the player can do next.
type Action string

const (
	ActionBet          Action = "bet"
	ActionDeal         Action = "deal"
	ActionSplit        Action = "split"
	ActionDeclineSplit Action = "decline"
	ActionHit          Action = "hit"
	ActionStand        Action = "stand"
	ActionDouble       Action = "double"
	ActionProceed      Action = "proceed"
)

// Cue names a sound the host may play. Cues are fire-and-forget.
type Cue string

const (
	CueBet     Cue = "bet"
	CueThrow   Cue = "throw"
	CueFlip    Cue = "flip"
	CueWin     Cue = "win"
	CueLose    Cue = "lose"
	CueShuffle Cue = "shuffle"
)

// Seat identifies who receives a card.
type Seat int

const (
	SeatPlayer Seat = iota
	SeatDealer
)

func (s Seat) String() string {
	if s == SeatDealer {
		return "dealer"
	}
	return "player"
}
