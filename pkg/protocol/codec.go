package protocol

import (
	"errors"
	"fmt"

	"github.com/vctt94/threecardpoker/pkg/poker"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrMalformed is returned for bytes that are not a valid envelope.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for a well formed envelope whose type tag
	// is not known. The decoded message is still returned.
	ErrUnknownType = errors.New("unknown message type")
	// ErrUnsupportedVersion is returned for envelopes newer than Version.
	ErrUnsupportedVersion = errors.New("unsupported message version")
)

// Envelope field numbers.
const (
	fieldVersion    protowire.Number = 1
	fieldType       protowire.Number = 2
	fieldPlayerCard protowire.Number = 3
	fieldDealerCard protowire.Number = 4
	fieldAnte       protowire.Number = 5
	fieldPairPlus   protowire.Number = 6
	fieldLogLine    protowire.Number = 7
	fieldText       protowire.Number = 8
	fieldHandID     protowire.Number = 9
)

// Card field numbers.
const (
	fieldCardSuit protowire.Number = 1
	fieldCardRank protowire.Number = 2
)

func appendCard(b []byte, num protowire.Number, c poker.Card) []byte {
	var cb []byte
	cb = protowire.AppendTag(cb, fieldCardSuit, protowire.VarintType)
	cb = protowire.AppendVarint(cb, uint64(c.Suit()))
	cb = protowire.AppendTag(cb, fieldCardRank, protowire.VarintType)
	cb = protowire.AppendVarint(cb, uint64(c.Rank()))

	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, cb)
}

// Marshal appends the wire encoding of m to b.
func Marshal(b []byte, m *Message) []byte {
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))

	for _, c := range m.PlayerHand {
		b = appendCard(b, fieldPlayerCard, c)
	}
	for _, c := range m.DealerHand {
		b = appendCard(b, fieldDealerCard, c)
	}
	if m.Ante != 0 {
		b = protowire.AppendTag(b, fieldAnte, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Ante))
	}
	if m.PairPlus != 0 {
		b = protowire.AppendTag(b, fieldPairPlus, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.PairPlus))
	}
	for _, line := range m.Lines {
		b = protowire.AppendTag(b, fieldLogLine, protowire.BytesType)
		b = protowire.AppendString(b, line)
	}
	if m.Text != "" {
		b = protowire.AppendTag(b, fieldText, protowire.BytesType)
		b = protowire.AppendString(b, m.Text)
	}
	if m.HandID != "" {
		b = protowire.AppendTag(b, fieldHandID, protowire.BytesType)
		b = protowire.AppendString(b, m.HandID)
	}
	return b
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func consumeCard(b []byte) (poker.Card, error) {
	var suit, rank uint64
	var haveSuit, haveRank bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return poker.Card{}, malformed("card tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldCardSuit && typ == protowire.VarintType:
			suit, n = protowire.ConsumeVarint(b)
			haveSuit = true
		case num == fieldCardRank && typ == protowire.VarintType:
			rank, n = protowire.ConsumeVarint(b)
			haveRank = true
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return poker.Card{}, malformed("card field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	if !haveSuit || !haveRank {
		return poker.Card{}, malformed("card missing suit or rank")
	}
	if suit > 0xff || rank > 0xff {
		return poker.Card{}, malformed("card out of range")
	}
	c, err := poker.NewCard(poker.Suit(suit), poker.Rank(rank))
	if err != nil {
		return poker.Card{}, malformed("%v", err)
	}
	return c, nil
}

// Unmarshal decodes one envelope. Unknown fields are skipped. When the type
// tag is not known the message is returned together with ErrUnknownType.
func Unmarshal(b []byte) (*Message, error) {
	m := &Message{}
	var version uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		var v uint64
		switch {
		case typ == protowire.VarintType && (num == fieldVersion || num == fieldType ||
			num == fieldAnte || num == fieldPairPlus):
			v, n = protowire.ConsumeVarint(b)
			if n < 0 {
				break
			}
			switch num {
			case fieldVersion:
				version = v
			case fieldType:
				if v > 1<<31-1 {
					return nil, malformed("type out of range")
				}
				m.Type = Type(v)
			case fieldAnte:
				m.Ante = protowire.DecodeZigZag(v)
			case fieldPairPlus:
				m.PairPlus = protowire.DecodeZigZag(v)
			}

		case typ == protowire.BytesType && (num == fieldPlayerCard || num == fieldDealerCard):
			var cb []byte
			cb, n = protowire.ConsumeBytes(b)
			if n < 0 {
				break
			}
			c, err := consumeCard(cb)
			if err != nil {
				return nil, err
			}
			if num == fieldPlayerCard {
				m.PlayerHand = append(m.PlayerHand, c)
			} else {
				m.DealerHand = append(m.DealerHand, c)
			}

		case typ == protowire.BytesType && (num == fieldLogLine || num == fieldText || num == fieldHandID):
			var s string
			s, n = protowire.ConsumeString(b)
			if n < 0 {
				break
			}
			switch num {
			case fieldLogLine:
				m.Lines = append(m.Lines, s)
			case fieldText:
				m.Text = s
			case fieldHandID:
				m.HandID = s
			}

		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, malformed("field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}

	if version == 0 {
		return nil, malformed("missing version")
	}
	if version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if !m.Type.Known() {
		return m, fmt.Errorf("%w: %d", ErrUnknownType, int32(m.Type))
	}
	return m, nil
}
