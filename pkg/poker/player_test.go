package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(3, "Player-3", DefaultStartingChips)
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, "Player-3", p.Name)
	assert.Equal(t, int64(500), p.Chips)
	assert.False(t, p.Folded)
	assert.Empty(t, p.Hand)
}

func TestPlayerHandLifecycle(t *testing.T) {
	p := NewPlayer(1, "p", 0)
	cards := []Card{MustCard(Spade, Ace), MustCard(Heart, Two), MustCard(Club, Three)}

	p.SetHand(cards)
	cards[0] = MustCard(Diamond, King)
	assert.Equal(t, MustCard(Spade, Ace), p.Hand[0], "SetHand copies")

	cp := p.HandCopy()
	cp[1] = MustCard(Diamond, King)
	assert.Equal(t, MustCard(Heart, Two), p.Hand[1], "HandCopy copies")

	p.Folded = true
	p.ResetHand()
	assert.False(t, p.Folded)
	assert.Empty(t, p.Hand)
}
