package poker

// pairPlusMultipliers maps each category to its Pair-Plus odds.
var pairPlusMultipliers = map[HandRank]int64{
	HighCard:      0,
	Pair:          1,
	Flush:         4,
	Straight:      6,
	ThreeOfAKind:  30,
	StraightFlush: 40,
}

// PairPlusMultiplier returns the Pair-Plus odds for rank, or 0 for a rank
// outside the table.
func PairPlusMultiplier(rank HandRank) int64 {
	return pairPlusMultipliers[rank]
}

// PairPlusPayout returns the Pair-Plus winnings of hand for wager.
func PairPlusPayout(hand []Card, wager int64) (int64, error) {
	rank, err := Classify(hand)
	if err != nil {
		return 0, err
	}
	return PairPlusMultiplier(rank) * wager, nil
}

// AntePayout returns what the ante wager pays back given the outcome of
// CompareHands: double on a win, the wager on a push, nothing on a loss.
func AntePayout(outcome int, ante int64) int64 {
	switch {
	case outcome > 0:
		return 2 * ante
	case outcome == 0:
		return ante
	default:
		return 0
	}
}
