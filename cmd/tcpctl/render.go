package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

var (
	redCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	blackCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	logStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	winStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

func renderCard(c poker.Card) string {
	if c.Suit() == poker.Heart || c.Suit() == poker.Diamond {
		return redCardStyle.Render(c.String())
	}
	return blackCardStyle.Render(c.String())
}

func renderHand(title string, hand []poker.Card) string {
	cards := make([]string, 0, len(hand))
	for _, c := range hand {
		cards = append(cards, renderCard(c))
	}
	label := title
	if rank, err := poker.Classify(hand); err == nil {
		label = fmt.Sprintf("%s (%s)", title, rank)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(label),
		lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func renderDeal(m *protocol.Message) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Hand %s: ante $%d, pair plus $%d", m.HandID, m.Ante, m.PairPlus)),
		renderHand("You", m.PlayerHand))
}

func renderResult(m *protocol.Message, balance int64) string {
	style := winStyle
	if m.Ante <= 0 {
		style = lossStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHand("You", m.PlayerHand),
		renderHand("Dealer", m.DealerHand),
		style.Render(fmt.Sprintf("Ante %+d, pair plus %+d. Wallet: $%d", m.Ante, m.PairPlus, balance)))
}

func renderLog(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(logStyle.Render("» " + l))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// handReport is the -json form of a deal, a result or a classified hand.
type handReport struct {
	Type         string       `json:"type"`
	HandID       string       `json:"hand_id,omitempty"`
	Player       []poker.Card `json:"player"`
	PlayerRank   string       `json:"player_rank,omitempty"`
	Dealer       []poker.Card `json:"dealer,omitempty"`
	DealerRank   string       `json:"dealer_rank,omitempty"`
	Ante         int64        `json:"ante"`
	PairPlus     int64        `json:"pair_plus"`
	PairPlusPays *int64       `json:"pair_plus_pays,omitempty"`
	Wallet       *int64       `json:"wallet,omitempty"`
}

func rankName(hand []poker.Card) string {
	rank, err := poker.Classify(hand)
	if err != nil {
		return ""
	}
	return rank.String()
}

// dealReport leaves out the dealer's cards, which are still face down.
func dealReport(m *protocol.Message) handReport {
	return handReport{
		Type:       "deal",
		HandID:     m.HandID,
		Player:     m.PlayerHand,
		PlayerRank: rankName(m.PlayerHand),
		Ante:       m.Ante,
		PairPlus:   m.PairPlus,
	}
}

func resultReport(m *protocol.Message, balance int64) handReport {
	return handReport{
		Type:       "result",
		HandID:     m.HandID,
		Player:     m.PlayerHand,
		PlayerRank: rankName(m.PlayerHand),
		Dealer:     m.DealerHand,
		DealerRank: rankName(m.DealerHand),
		Ante:       m.Ante,
		PairPlus:   m.PairPlus,
		Wallet:     &balance,
	}
}

func classifyReport(hand []poker.Card, pays int64) handReport {
	return handReport{
		Type:         "classify",
		Player:       hand,
		PlayerRank:   rankName(hand),
		PairPlusPays: &pays,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
