package evaluator

import (
	"testing"

	"github.com/lox/boothjack/internal/deck"
	"github.com/lox/boothjack/internal/randutil"
	"github.com/stretchr/testify/assert"
)

func cards(s string) []deck.Card {
	return deck.MustParseCards(s)
}

func TestCardValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 8, CardValue(deck.NewCard(deck.Ace)))
	for r := deck.One; r <= deck.Seven; r++ {
		assert.Equal(t, int(r), CardValue(deck.NewCard(r)))
	}
}

func TestValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hand string
		want int
		soft bool
	}{
		{hand: "", want: 0},
		{hand: "35", want: 8},
		{hand: "26", want: 8},
		{hand: "A7", want: 15, soft: true},
		{hand: "AA", want: 8, soft: true},
		{hand: "AA7", want: 15, soft: true},
		{hand: "AAA", want: 8, soft: true},
		{hand: "AAAA", want: 8, soft: true},
		{hand: "A77", want: 14},
		{hand: "777", want: 21},
		{hand: "A5", want: 13, soft: true},
		{hand: "A53", want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(cards(tt.hand)))
			assert.Equal(t, tt.soft, IsSoft(cards(tt.hand)))
		})
	}
}

func TestAceAdjustsOnlyOnce(t *testing.T) {
	t.Parallel()
	// 8 + 8 + 7 = 23, one ace drops: 15, not 7.
	assert.Equal(t, 15, Value(cards("AA7")))
}

func TestValueIgnoresOrder(t *testing.T) {
	t.Parallel()
	rng := randutil.New(9)
	for range 200 {
		n := 1 + rng.IntN(6)
		hand := make([]deck.Card, n)
		for i := range hand {
			hand[i] = deck.NewCard(deck.Rank(rng.IntN(int(deck.MaxRank) + 1)))
		}
		want := Value(hand)
		shuffled := append([]deck.Card(nil), hand...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Value(shuffled), "hand %s", deck.FormatCards(hand))
	}
}

func TestIsNatural(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNatural(cards("A7")))
	assert.True(t, IsNatural(cards("7A")))
	assert.False(t, IsNatural(cards("77")), "14 is not a natural")
	assert.False(t, IsNatural(cards("A43")), "three cards are never a natural")
	assert.False(t, IsNatural(cards("AA7")))
}

func TestBustAndDealerDraw(t *testing.T) {
	t.Parallel()
	assert.False(t, IsBust(cards("77A")), "ace drops to keep 14")
	assert.True(t, IsBust(cards("773")))
	assert.True(t, DealerMustDraw(cards("56")))
	assert.False(t, DealerMustDraw(cards("57")))
	assert.False(t, DealerMustDraw(cards("A4")), "soft 12 stands")
}
