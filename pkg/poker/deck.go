package poker

import (
	"math/rand"
	"time"
)

// DeckSize is the number of distinct cards in a full deck.
const DeckSize = 52

// Deck is a draw-without-replacement deck. It is not safe for concurrent
// use; each session owns its own.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a full, unshuffled deck that shuffles with rng. A nil rng
// is replaced by a time-seeded one.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	d.Reset()
	return d
}

// Reset repopulates the deck with all 52 cards in suit-major order.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, Card{suit: suit, rank: rank})
		}
	}
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes up to n cards from the end of the deck and returns them. Fewer
// than n cards are returned when the deck runs out.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return []Card{}
	}
	hand := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		last := len(d.cards) - 1
		hand = append(hand, d.cards[last])
		d.cards = d.cards[:last]
	}
	return hand
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
