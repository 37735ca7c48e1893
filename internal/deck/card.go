package deck

import (
	"fmt"
	"strings"
)

// Rank is the only attribute a card has in this ruleset. Rank 0 is the ace.
type Rank uint8

const (
	Ace Rank = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
)

// MaxRank is the highest rank in the shoe.
const MaxRank = Seven

// Valid reports whether r is a rank that can appear in the shoe.
func (r Rank) Valid() bool {
	return r <= MaxRank
}

// String returns "A" for the ace and the face digit otherwise.
func (r Rank) String() string {
	if r == Ace {
		return "A"
	}
	if !r.Valid() {
		return "?"
	}
	return fmt.Sprintf("%d", uint8(r))
}

// Card is a suitless playing card.
type Card struct {
	Rank Rank `json:"rank"`
}

// NewCard creates a card of the given rank.
func NewCard(rank Rank) Card {
	return Card{Rank: rank}
}

func (c Card) String() string {
	return c.Rank.String()
}

// IsAce reports whether the card is rank 0.
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// ParseCards parses a compact string such as "A37" into cards. Whitespace is
// ignored; "a" and "0" are both accepted for the ace.
func ParseCards(s string) ([]Card, error) {
	cards := make([]Card, 0, len(s))
	for i, ch := range strings.ToUpper(s) {
		switch {
		case ch == ' ' || ch == ',':
			continue
		case ch == 'A' || ch == '0':
			cards = append(cards, NewCard(Ace))
		case ch >= '1' && ch <= '7':
			cards = append(cards, NewCard(Rank(ch-'0')))
		default:
			return nil, fmt.Errorf("invalid card %q at position %d", ch, i)
		}
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards as a space separated list.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
