package poker

import (
	"errors"
	"fmt"
	"sort"
)

// HandSize is the number of cards in a Three Card Poker hand.
const HandSize = 3

// ErrInvalidHand is returned when a hand does not hold exactly HandSize cards.
var ErrInvalidHand = errors.New("hand must contain exactly 3 cards")

// HandRank is the category of a 3-card hand, weakest first.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	Flush
	Straight
	ThreeOfAKind
	StraightFlush
)

var handRankNames = map[HandRank]string{
	HighCard:      "HIGH_CARD",
	Pair:          "PAIR",
	Flush:         "FLUSH",
	Straight:      "STRAIGHT",
	ThreeOfAKind:  "THREE_OF_A_KIND",
	StraightFlush: "STRAIGHT_FLUSH",
}

func (r HandRank) String() string {
	if s, ok := handRankNames[r]; ok {
		return s
	}
	return fmt.Sprintf("HandRank(%d)", int(r))
}

// Beats reports whether r is a strictly stronger category than o.
func (r HandRank) Beats(o HandRank) bool { return r > o }

// sortedByIndex returns a copy of hand ordered by rank index, ACE lowest.
func sortedByIndex(hand []Card) []Card {
	out := append([]Card(nil), hand...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// sortedByValue returns a copy of hand ordered by rank value, ACE highest.
func sortedByValue(hand []Card) []Card {
	out := append([]Card(nil), hand...)
	sort.Slice(out, func(i, j int) bool { return out[i].rank.Value() < out[j].rank.Value() })
	return out
}

func isFlush(hand []Card) bool {
	for _, c := range hand[1:] {
		if c.suit != hand[0].suit {
			return false
		}
	}
	return true
}

func isStraight(hand []Card) bool {
	s := sortedByIndex(hand)
	if s[0].rank == Ace && s[1].rank == Queen && s[2].rank == King {
		return true
	}
	for i := 0; i < len(s)-1; i++ {
		if s[i].rank.Index() != s[i+1].rank.Index()-1 {
			return false
		}
	}
	return true
}

func distinctRanks(hand []Card) int {
	seen := make(map[Rank]struct{}, len(hand))
	for _, c := range hand {
		seen[c.rank] = struct{}{}
	}
	return len(seen)
}

// Classify returns the category of a 3-card hand. The caller's slice is not
// reordered.
func Classify(hand []Card) (HandRank, error) {
	if len(hand) != HandSize {
		return HighCard, fmt.Errorf("%w: got %d", ErrInvalidHand, len(hand))
	}

	flush := isFlush(hand)
	straight := isStraight(hand)
	distinct := distinctRanks(hand)

	switch {
	case straight && flush:
		return StraightFlush, nil
	case distinct == 1:
		return ThreeOfAKind, nil
	case straight:
		return Straight, nil
	case flush:
		return Flush, nil
	case distinct == 2:
		return Pair, nil
	default:
		return HighCard, nil
	}
}

// MustClassify is Classify for hands dealt by a Session, where a wrong size
// means the deck invariant is already broken.
func MustClassify(hand []Card) HandRank {
	r, err := Classify(hand)
	if err != nil {
		panic(err)
	}
	return r
}

// CompareHands compares the dealer's hand against the player's and returns
// -1 if the dealer wins, 0 on a push and 1 if the player wins.
//
// Equal categories are decided by the highest card and then the middle card.
// The lowest card is never looked at.
func CompareHands(dealer, player []Card) (int, error) {
	dealerRank, err := Classify(dealer)
	if err != nil {
		return 0, fmt.Errorf("dealer: %w", err)
	}
	playerRank, err := Classify(player)
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}

	switch {
	case playerRank < dealerRank:
		return -1, nil
	case playerRank > dealerRank:
		return 1, nil
	}

	d := sortedByValue(dealer)
	p := sortedByValue(player)
	for _, i := range []int{2, 1} {
		pv, dv := p[i].rank.Value(), d[i].rank.Value()
		if pv < dv {
			return -1, nil
		}
		if pv > dv {
			return 1, nil
		}
	}
	return 0, nil
}
