// Package evaluator scores hands under the fifteen-point ruleset: aces count
// 8 unless that would bust the hand, in which case each ace may drop to 0.
package evaluator

import "github.com/lox/boothjack/internal/deck"

const (
	// BustLimit is the highest value a hand can hold without busting.
	BustLimit = 15
	// Natural is the value a two-card hand needs to be a natural.
	Natural = 15
	// DealerStandsAt is the value at which the dealer stops drawing.
	DealerStandsAt = 12

	aceValue      = 8
	aceAdjustment = 8
)

// CardValue returns the base value of a card.
func CardValue(c deck.Card) int {
	if c.IsAce() {
		return aceValue
	}
	return int(c.Rank)
}

// Value returns the hand value after ace adjustment. The result depends only
// on the multiset of ranks, never on card order.
func Value(cards []deck.Card) int {
	value, _ := evaluate(cards)
	return value
}

// IsSoft reports whether at least one ace is still counted at 8.
func IsSoft(cards []deck.Card) bool {
	_, soft := evaluate(cards)
	return soft
}

func evaluate(cards []deck.Card) (value int, soft bool) {
	aces := 0
	for _, c := range cards {
		value += CardValue(c)
		if c.IsAce() {
			aces++
		}
	}
	for value > BustLimit && aces > 0 {
		value -= aceAdjustment
		aces--
	}
	return value, aces > 0
}

// IsNatural reports whether the hand is exactly two cards worth 15.
func IsNatural(cards []deck.Card) bool {
	return len(cards) == 2 && Value(cards) == Natural
}

// IsBust reports whether the hand is over the limit.
func IsBust(cards []deck.Card) bool {
	return Value(cards) > BustLimit
}

// DealerMustDraw reports whether the dealer has to take another card.
func DealerMustDraw(cards []deck.Card) bool {
	return Value(cards) < DealerStandsAt
}
