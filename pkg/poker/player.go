package poker

// DefaultStartingChips is the chip balance a new player sits down with.
const DefaultStartingChips = 500

// Player is the per-connection player state. It is owned by one Session and
// never shared.
type Player struct {
	ID     int
	Name   string
	Chips  int64
	Folded bool
	Hand   []Card
}

// NewPlayer creates a player holding chips.
func NewPlayer(id int, name string, chips int64) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Chips: chips,
		Hand:  make([]Card, 0, HandSize),
	}
}


// ResetHand clears the hand and the fold flag before a new deal.
func (p *Player) ResetHand() {
	p.Folded = false
	p.Hand = p.Hand[:0]
}

// SetHand replaces the player's hand with a copy of cards.
func (p *Player) SetHand(cards []Card) {
	p.Hand = append(p.Hand[:0], cards...)
}

// HandCopy returns a copy of the current hand.
func (p *Player) HandCopy() []Card {
	return append([]Card(nil), p.Hand...)
}
