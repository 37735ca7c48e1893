package deck

import (
	rand "math/rand/v2"
)

// SubDecks is the number of sub-decks concatenated into one shoe.
const SubDecks = 4

// composition lists how many cards of each rank one sub-deck holds.
var composition = [MaxRank + 1]int{
	Ace:   4,
	One:   5,
	Two:   5,
	Three: 5,
	Four:  5,
	Five:  6,
	Six:   6,
	Seven: 16,
}

// SubDeckSize is the number of cards in one sub-deck.
var SubDeckSize = func() int {
	n := 0
	for _, c := range composition {
		n += c
	}
	return n
}()

// ShoeSize is the number of cards in a freshly built shoe.
var ShoeSize = SubDecks * SubDeckSize

// Deck is the shoe. Cards are drawn from the tail; when it runs dry it is
// rebuilt from the full composition and reshuffled, so there is no running
// count across that boundary.
type Deck struct {
	cards   []Card
	rng     *rand.Rand
	stacked bool
}

// New builds and shuffles a full shoe.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{rng: rng}
	d.rebuild()
	d.Shuffle()
	return d
}

// Stacked returns a deck that deals the given cards in order (first argument
// is drawn first) and never shuffles them. Once exhausted it behaves like a
// normal shoe seeded from rng.
func Stacked(rng *rand.Rand, cards ...Card) *Deck {
	d := &Deck{rng: rng, stacked: true}
	d.cards = make([]Card, len(cards))
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

func (d *Deck) rebuild() {
	d.cards = make([]Card, 0, ShoeSize)
	for range SubDecks {
		for rank, n := range composition {
			for range n {
				d.cards = append(d.cards, NewCard(Rank(rank)))
			}
		}
	}
	d.stacked = false
}

// Shuffle permutes the cards currently in the shoe in place (Fisher-Yates).
// It does not restore cards already drawn. Stacked decks ignore it until
// their fixed cards run out.
func (d *Deck) Shuffle() {
	if d.stacked {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card, rebuilding the shoe first if it is
// empty. It never fails.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		if d.rng == nil {
			panic("deck exhausted and no rng to rebuild it")
		}
		d.rebuild()
		d.Shuffle()
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

// Remaining returns the number of cards left before the next rebuild.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Counts returns how many cards of each rank remain.
func (d *Deck) Counts() [MaxRank + 1]int {
	var counts [MaxRank + 1]int
	for _, c := range d.cards {
		counts[c.Rank]++
	}
	return counts
}
