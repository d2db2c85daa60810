package poker

import (
	"encoding/json"
	"fmt"
	"strings"

	chpoker "github.com/chehsunliu/poker"
)

// Suit represents a card suit
type Suit uint8

const (
	Heart Suit = iota
	Diamond
	Spade
	Club
)

var suitNames = [...]string{"HEART", "DIAMOND", "SPADE", "CLUB"}
var suitSymbols = [...]string{"♥", "♦", "♠", "♣"}

// Suits lists every suit in declaration order.
var Suits = []Suit{Heart, Diamond, Spade, Club}

func (s Suit) valid() bool { return int(s) < len(suitNames) }

// String returns the suit name, e.g. "SPADE".
func (s Suit) String() string {
	if !s.valid() {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode suit glyph.
func (s Suit) Symbol() string {
	if !s.valid() {
		return "?"
	}
	return suitSymbols[s]
}

// Rank represents a card rank. Ranks are ordered ACE..KING; the ace is low
// by index and high by value.
type Rank uint8

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{
	"ACE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN",
	"EIGHT", "NINE", "TEN", "JACK", "QUEEN", "KING",
}

const rankChars = "A23456789TJQK"

// Ranks lists every rank from ACE to KING.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

func (r Rank) valid() bool { return int(r) < len(rankNames) }

// String returns the rank name, e.g. "QUEEN".
func (r Rank) String() string {
	if !r.valid() {
		return fmt.Sprintf("Rank(%d)", uint8(r))
	}
	return rankNames[r]
}

// Index is the 0-based position of the rank, ACE=0 .. KING=12.
func (r Rank) Index() int { return int(r) }

// Value is the comparison value of the rank: TWO=2 .. KING=13, ACE=14.
func (r Rank) Value() int {
	if r == Ace {
		return 14
	}
	return int(r) + 1
}

// Card represents a playing card
type Card struct {
	suit Suit
	rank Rank
}

// NewCard creates a card, validating suit and rank.
func NewCard(suit Suit, rank Rank) (Card, error) {
	if !suit.valid() {
		return Card{}, fmt.Errorf("invalid suit: %d", suit)
	}
	if !rank.valid() {
		return Card{}, fmt.Errorf("invalid rank: %d", rank)
	}
	return Card{suit: suit, rank: rank}, nil
}

// MustCard is NewCard for literals known to be valid.
func MustCard(suit Suit, rank Rank) Card {
	c, err := NewCard(suit, rank)
	if err != nil {
		panic(err)
	}
	return c
}

// Suit returns the card's suit
func (c Card) Suit() Suit { return c.suit }

// Rank returns the card's rank
func (c Card) Rank() Rank { return c.rank }

// String returns a short representation such as "Q♠".
func (c Card) String() string {
	return string(rankChars[c.rank]) + c.suit.Symbol()
}

// Name returns the long representation such as "QUEEN of SPADE".
func (c Card) Name() string {
	return c.rank.String() + " of " + c.suit.String()
}

// Less orders cards by rank index first and suit second. It is a display
// order only; poker strength comparisons use Rank.Value.
func (c Card) Less(o Card) bool {
	if c.rank != o.rank {
		return c.rank < o.rank
	}
	return c.suit < o.suit
}

// cardJSON represents a card for JSON serialization
type cardJSON struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Short string `json:"short"`
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.suit.String(), Rank: c.rank.String(), Short: c.String()})
}

// chehsunliu suit bits: s=1 h=2 d=4 c=8.
var suitFromChehsunliu = map[int32]Suit{1: Spade, 2: Heart, 4: Diamond, 8: Club}

// ParseCard parses short notation like "As", "Td", "10h" or "qC".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}
	rankStr := strings.ToUpper(s[:len(s)-1])
	if rankStr == "10" {
		rankStr = "T"
	}
	suitChar := strings.ToLower(s[len(s)-1:])
	if len(rankStr) != 1 || !strings.Contains("23456789TJQKA", rankStr) {
		return Card{}, fmt.Errorf("invalid rank in %q", s)
	}
	if !strings.Contains("shdc", suitChar) {
		return Card{}, fmt.Errorf("invalid suit in %q", s)
	}

	// chehsunliu ranks run 2..A as 0..12.
	cc := chpoker.NewCard(rankStr + suitChar)
	rank := Rank((cc.Rank() + 1) % 13)
	suit, ok := suitFromChehsunliu[cc.Suit()]
	if !ok {
		return Card{}, fmt.Errorf("invalid suit in %q", s)
	}
	return NewCard(suit, rank)
}

// ParseHand parses space or comma separated card notation.
func ParseHand(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
