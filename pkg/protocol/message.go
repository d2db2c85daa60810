// Package protocol defines the messages exchanged between a player and the
// house server and their wire encoding.
//
// Every message is an Envelope: a version, a type tag and a fixed set of
// optional fields. Envelopes are encoded with the protobuf wire format and
// framed with a varint length prefix.
package protocol

import (
	"fmt"

	"github.com/vctt94/threecardpoker/pkg/poker"
)

// Version is the envelope version written by this package.
const Version = 1

// Type tags a message.
type Type int32

const (
	TypeUnspecified Type = iota
	TypeWelcome
	TypeStart
	TypePlay
	TypeFold
	TypeGameDeal
	TypeGameResult
	TypeLog
	TypeChat
)

var typeNames = map[Type]string{
	TypeUnspecified: "UNSPECIFIED",
	TypeWelcome:     "WELCOME",
	TypeStart:       "START",
	TypePlay:        "PLAY",
	TypeFold:        "FOLD",
	TypeGameDeal:    "GAME_DEAL",
	TypeGameResult:  "GAME_RESULT",
	TypeLog:         "LOG",
	TypeChat:        "CHAT",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// Known reports whether t is one of the defined message types.
func (t Type) Known() bool {
	return t > TypeUnspecified && t <= TypeChat
}

// Message is one protocol envelope. Which fields are meaningful depends on
// Type:
//
//	WELCOME      none
//	START        Ante, PairPlus
//	PLAY, FOLD   PlayerHand, DealerHand, Ante, PairPlus
//	GAME_DEAL    PlayerHand, DealerHand, Ante, PairPlus, HandID
//	GAME_RESULT  PlayerHand, DealerHand, Ante, PairPlus, HandID
//	LOG          Lines
//	CHAT         Text
//
// A Message is not modified after it has been sent.
type Message struct {
	Type       Type
	PlayerHand []poker.Card
	DealerHand []poker.Card
	Ante       int64
	PairPlus   int64
	Lines      []string
	Text       string
	HandID     string
}

func (m *Message) String() string {
	switch m.Type {
	case TypeLog:
		return fmt.Sprintf("%s %q", m.Type, m.Lines)
	case TypeChat:
		return fmt.Sprintf("%s %q", m.Type, m.Text)
	case TypeWelcome:
		return m.Type.String()
	}
	return fmt.Sprintf("%s player=%v dealer=%v ante=%d pairplus=%d", m.Type,
		m.PlayerHand, m.DealerHand, m.Ante, m.PairPlus)
}

// Welcome is sent by the server as soon as a connection is accepted.
func Welcome() *Message {
	return &Message{Type: TypeWelcome}
}

// Start asks the server to deal a new hand with the given wagers.
func Start(ante, pairPlus int64) *Message {
	return &Message{Type: TypeStart, Ante: ante, PairPlus: pairPlus}
}

// Play asks the server to resolve the dealt hand.
func Play(playerHand, dealerHand []poker.Card, ante, pairPlus int64) *Message {
	return &Message{Type: TypePlay, PlayerHand: playerHand, DealerHand: dealerHand, Ante: ante, PairPlus: pairPlus}
}

// Fold forfeits the dealt hand.
func Fold(playerHand, dealerHand []poker.Card, ante, pairPlus int64) *Message {
	return &Message{Type: TypeFold, PlayerHand: playerHand, DealerHand: dealerHand, Ante: ante, PairPlus: pairPlus}
}

// GameDeal reports a fresh deal.
func GameDeal(d poker.Deal) *Message {
	return &Message{
		Type:       TypeGameDeal,
		PlayerHand: d.PlayerHand,
		DealerHand: d.DealerHand,
		Ante:       d.Ante,
		PairPlus:   d.PairPlus,
		HandID:     d.HandID,
	}
}

// GameResult reports the settlement of a hand.
func GameResult(r poker.Result) *Message {
	return &Message{
		Type:       TypeGameResult,
		PlayerHand: r.PlayerHand,
		DealerHand: r.DealerHand,
		Ante:       r.Ante,
		PairPlus:   r.PairPlus,
		HandID:     r.HandID,
	}
}

// Log carries server log lines.
func Log(lines ...string) *Message {
	return &Message{Type: TypeLog, Lines: lines}
}

// Chat carries a free text message from the player.
func Chat(text string) *Message {
	return &Message{Type: TypeChat, Text: text}
}
