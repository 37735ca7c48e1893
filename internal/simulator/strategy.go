package simulator

import (
	"fmt"
	"slices"

	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/evaluator"
	"github.com/lox/boothjack/internal/game"
)

// Strategy decides for the player in a simulated round.
type Strategy interface {
	Name() string
	// Split is asked while a split is on offer.
	Split(s game.Snapshot) bool
	// Play returns hit, stand or double for the active hand.
	Play(s game.Snapshot) game.Action
}

// Strategies lists the built-in strategy names.
var Strategies = []string{"basic", "never-bust", "dealer-mimic"}

// NewStrategy returns a built-in strategy by name.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "basic":
		return basicStrategy{}, nil
	case "never-bust":
		return neverBustStrategy{}, nil
	case "dealer-mimic":
		return dealerMimicStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, Strategies)
	}
}

func activeCards(s game.Snapshot) []deck.Card {
	if s.ActiveHand >= len(s.Hands) {
		return nil
	}
	return faceUp(s.Hands[s.ActiveHand].Cards)
}

func faceUp(views []game.CardView) []deck.Card {
	cards := make([]deck.Card, 0, len(views))
	for _, v := range views {
		if v.FaceUp {
			cards = append(cards, v.Card)
		}
	}
	return cards
}

func upcardValue(s game.Snapshot) int {
	up := faceUp(s.Dealer)
	if len(up) == 0 {
		return 0
	}
	return evaluator.CardValue(up[0])
}

// basicStrategy splits aces and sevens, doubles on 7 or 8, and hits
// borderline totals only against a strong dealer upcard.
type basicStrategy struct{}

func (basicStrategy) Name() string { return "basic" }

func (basicStrategy) Split(s game.Snapshot) bool {
	cards := activeCards(s)
	if len(cards) != 2 {
		return false
	}
	return cards[0].Rank == deck.Ace || cards[0].Rank == deck.Seven
}

func (basicStrategy) Play(s game.Snapshot) game.Action {
	cards := activeCards(s)
	value := evaluator.Value(cards)

	if len(cards) == 2 && (value == 7 || value == 8) && slices.Contains(s.Actions, game.ActionDouble) {
		return game.ActionDouble
	}
	switch {
	case value < 9:
		return game.ActionHit
	case value < 12 && upcardValue(s) >= 6:
		return game.ActionHit
	default:
		return game.ActionStand
	}
}

// neverBustStrategy only draws when no card can bust the hand.
type neverBustStrategy struct{}

func (neverBustStrategy) Name() string             { return "never-bust" }
func (neverBustStrategy) Split(game.Snapshot) bool { return false }

func (neverBustStrategy) Play(s game.Snapshot) game.Action {
	if evaluator.Value(activeCards(s))+int(deck.MaxRank) <= evaluator.BustLimit {
		return game.ActionHit
	}
	return game.ActionStand
}

// dealerMimicStrategy follows the house rule.
type dealerMimicStrategy struct{}

func (dealerMimicStrategy) Name() string             { return "dealer-mimic" }
func (dealerMimicStrategy) Split(game.Snapshot) bool { return false }

func (dealerMimicStrategy) Play(s game.Snapshot) game.Action {
	if evaluator.DealerMustDraw(activeCards(s)) {
		return game.ActionHit
	}
	return game.ActionStand
}
