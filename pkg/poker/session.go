package poker

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/vctt94/threecardpoker/pkg/statemachine"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// session's current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// Phase is the position of a Session in its hand cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDealt
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseDealt:
		return "DEALT"
	case PhaseResolved:
		return "RESOLVED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Deal is what the player sees after a new hand is dealt. Ante and PairPlus
// are the wagers as the caller supplied them.
type Deal struct {
	HandID     string
	PlayerHand []Card
	DealerHand []Card
	Ante       int64
	PairPlus   int64
}

// Result is the settlement of one hand. Ante and PairPlus are the amounts
// paid back for each wager; on a fold they are the negated wagers.
type Result struct {
	HandID     string
	PlayerHand []Card
	DealerHand []Card
	Ante       int64
	PairPlus   int64
	// Outcome is CompareHands(dealer, player); zero on a fold.
	Outcome    int
	PlayerRank HandRank
	DealerRank HandRank
	Folded     bool
}

// Net is the signed amount to apply to the player's displayed balance as
// reported by the session: the sum of both result fields.
func (r Result) Net() int64 {
	return r.Ante + r.PairPlus
}

// SessionConfig configures a new Session.
type SessionConfig struct {
	PlayerID      int
	PlayerName    string
	StartingChips int64
	// Rng drives the deck. Nil means time seeded.
	Rng *rand.Rand
	Log slog.Logger
}

type (
	startEvent struct{ ante, pairPlus int64 }
	playEvent  struct{ ante, pairPlus int64 }
	foldEvent  struct{ ante, pairPlus int64 }
)

// Session is the per-connection Three Card Poker engine: one player, one
// dealer hand and one deck. The dealer makes no decisions; its hand is just a
// second deal from the same deck.
//
// A Session is driven by a single connection worker and is not meant to be
// shared, but its methods are serialized by the state machine.
type Session struct {
	player     *Player
	dealerHand []Card
	deck       *Deck
	ante       int64
	pairPlus   int64
	handID     string
	phase      Phase

	lastDeal   Deal
	lastResult Result

	sm  *statemachine.StateMachine[Session]
	log slog.Logger
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	name := cfg.PlayerName
	if name == "" {
		name = fmt.Sprintf("Player-%d", cfg.PlayerID)
	}
	s := &Session{
		player:     NewPlayer(cfg.PlayerID, name, cfg.StartingChips),
		dealerHand: make([]Card, 0, HandSize),
		deck:       NewDeck(cfg.Rng),
		phase:      PhaseIdle,
		log:        log,
	}
	s.sm = statemachine.NewStateMachine(s, stateIdle)
	return s
}

func stateIdle(s *Session, ev any) (statemachine.StateFn[Session], error) {
	switch e := ev.(type) {
	case startEvent:
		s.deal(e.ante, e.pairPlus)
		return stateDealt, nil
	case foldEvent:
		s.fold(e.ante, e.pairPlus)
		return stateResolved, nil
	}
	return nil, fmt.Errorf("%w: %T while %s", ErrInvalidTransition, ev, s.phase)
}

func stateDealt(s *Session, ev any) (statemachine.StateFn[Session], error) {
	switch e := ev.(type) {
	case playEvent:
		s.resolve(e.ante, e.pairPlus)
		return stateResolved, nil
	case foldEvent:
		s.fold(e.ante, e.pairPlus)
		return stateResolved, nil
	}
	return nil, fmt.Errorf("%w: %T while %s", ErrInvalidTransition, ev, s.phase)
}

func stateResolved(s *Session, ev any) (statemachine.StateFn[Session], error) {
	if e, ok := ev.(startEvent); ok {
		s.deal(e.ante, e.pairPlus)
		return stateDealt, nil
	}
	return nil, fmt.Errorf("%w: %T while %s", ErrInvalidTransition, ev, s.phase)
}

func (s *Session) deal(ante, pairPlus int64) {
	s.ante = 0
	s.pairPlus = 0
	s.player.ResetHand()
	s.dealerHand = s.dealerHand[:0]

	s.deck.Reset()
	s.deck.Shuffle()
	s.player.SetHand(s.deck.Deal(HandSize))
	s.dealerHand = append(s.dealerHand, s.deck.Deal(HandSize)...)

	s.ante = ante
	s.pairPlus = pairPlus
	s.handID = uuid.NewString()
	s.phase = PhaseDealt

	s.lastDeal = Deal{
		HandID:     s.handID,
		PlayerHand: s.player.HandCopy(),
		DealerHand: s.DealerHand(),
		Ante:       ante,
		PairPlus:   pairPlus,
	}
	s.log.Debugf("Hand %s dealt to %s: player %v dealer %v (ante %d, pair plus %d)",
		s.handID, s.player.Name, s.player.Hand, s.dealerHand, ante, pairPlus)
}

func (s *Session) resolve(ante, pairPlus int64) {
	outcome, err := CompareHands(s.dealerHand, s.player.Hand)
	if err != nil {
		panic(err)
	}

	pp := int64(0)
	// Pair Plus only pays when the player also beat the dealer.
	if pairPlus > 0 && outcome > 0 {
		pp = PairPlusMultiplier(MustClassify(s.player.Hand)) * pairPlus
	}

	s.phase = PhaseResolved
	s.lastResult = Result{
		HandID:     s.handID,
		PlayerHand: s.player.HandCopy(),
		DealerHand: s.DealerHand(),
		Ante:       AntePayout(outcome, ante),
		PairPlus:   pp,
		Outcome:    outcome,
		PlayerRank: MustClassify(s.player.Hand),
		DealerRank: MustClassify(s.dealerHand),
	}
	s.log.Debugf("Hand %s resolved for %s: outcome %d, ante %d, pair plus %d",
		s.handID, s.player.Name, outcome, s.lastResult.Ante, s.lastResult.PairPlus)
}

func (s *Session) fold(ante, pairPlus int64) {
	s.player.Folded = true
	s.phase = PhaseResolved
	s.lastResult = Result{
		HandID:     s.handID,
		PlayerHand: s.player.HandCopy(),
		DealerHand: s.DealerHand(),
		Ante:       -ante,
		PairPlus:   -pairPlus,
		Folded:     true,
	}
	s.log.Debugf("Hand %s folded by %s: lost %d", s.handID, s.player.Name, ante+pairPlus)
}

// StartNewHand reshuffles a full deck and deals three cards to the player and
// then three to the dealer. The wagers are recorded as given. It is allowed
// before the first hand and after a hand has been resolved.
func (s *Session) StartNewHand(ante, pairPlus int64) (Deal, error) {
	if err := s.sm.Dispatch(startEvent{ante: ante, pairPlus: pairPlus}); err != nil {
		return Deal{}, err
	}
	return s.lastDeal, nil
}

// Resolve plays the dealt hand against the dealer. The ante pays double on a
// win, is returned on a push and lost otherwise. Pair Plus pays by the
// player's hand category, but only when the player won.
func (s *Session) Resolve(ante, pairPlus int64) (Result, error) {
	if err := s.sm.Dispatch(playEvent{ante: ante, pairPlus: pairPlus}); err != nil {
		return Result{}, err
	}
	return s.lastResult, nil
}

// Fold forfeits both wagers without looking at the cards. A fold before any
// deal is accepted and reports empty hands.
func (s *Session) Fold(ante, pairPlus int64) (Result, error) {
	if err := s.sm.Dispatch(foldEvent{ante: ante, pairPlus: pairPlus}); err != nil {
		return Result{}, err
	}
	return s.lastResult, nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Player returns the session's player.
func (s *Session) Player() *Player { return s.player }

// DealerHand returns a copy of the dealer's current hand.
func (s *Session) DealerHand() []Card {
	return append([]Card(nil), s.dealerHand...)
}

// DeckSize returns the number of undealt cards.
func (s *Session) DeckSize() int { return s.deck.Size() }
