package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

func TestShouldFold(t *testing.T) {
	tests := []struct {
		hand string
		fold bool
	}{
		{"Qs 6h 4c", false},
		{"Qs 5h 4c", true},
		{"Qs 6h 3c", false},
		{"Qs 7h 2c", false},
		{"Js Th 9c", false},
		{"Ks 3h 2d", false},
		{"2s 2h 5c", false},
		{"Ts 8h 5c", true},
	}
	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			hand, err := poker.ParseHand(tt.hand)
			require.NoError(t, err)
			assert.Equal(t, tt.fold, shouldFold(&protocol.Message{PlayerHand: hand}))
		})
	}
}

func TestRenderHandNamesCategory(t *testing.T) {
	hand, err := poker.ParseHand("As Ks Qs")
	require.NoError(t, err)
	assert.Contains(t, renderHand("You", hand), "You (STRAIGHT_FLUSH)")
}

func TestClassifyRejectsBadInput(t *testing.T) {
	assert.Error(t, handleClassify([]string{"As", "Kd"}))
	assert.Error(t, handleClassify([]string{"As", "Kd", "Zz"}))
	assert.NoError(t, handleClassify([]string{"As", "Kd", "Qh"}))
}

func TestJSONReports(t *testing.T) {
	player, err := poker.ParseHand("Ks Kh 3c")
	require.NoError(t, err)
	dealer, err := poker.ParseHand("2h 7h 9h")
	require.NoError(t, err)

	tests := []struct {
		name   string
		report handReport
		want   string
	}{
		{
			name: "deal hides dealer",
			report: dealReport(&protocol.Message{
				Type: protocol.TypeGameDeal, HandID: "h1",
				PlayerHand: player, DealerHand: dealer, Ante: 10, PairPlus: 5,
			}),
			want: `{"type":"deal","hand_id":"h1","player_rank":"PAIR","ante":10,"pair_plus":5,
				"player":[{"suit":"SPADE","rank":"KING","short":"K♠"},{"suit":"HEART","rank":"KING","short":"K♥"},{"suit":"CLUB","rank":"THREE","short":"3♣"}]}`,
		},
		{
			name: "result",
			report: resultReport(&protocol.Message{
				Type: protocol.TypeGameResult, HandID: "h1",
				PlayerHand: player, DealerHand: dealer,
			}, 485),
			want: `{"type":"result","hand_id":"h1","player_rank":"PAIR","dealer_rank":"FLUSH","ante":0,"pair_plus":0,"wallet":485,
				"player":[{"suit":"SPADE","rank":"KING","short":"K♠"},{"suit":"HEART","rank":"KING","short":"K♥"},{"suit":"CLUB","rank":"THREE","short":"3♣"}],
				"dealer":[{"suit":"HEART","rank":"TWO","short":"2♥"},{"suit":"HEART","rank":"SEVEN","short":"7♥"},{"suit":"HEART","rank":"NINE","short":"9♥"}]}`,
		},
		{
			name:   "classify",
			report: classifyReport(dealer, 4),
			want: `{"type":"classify","player_rank":"FLUSH","ante":0,"pair_plus":0,"pair_plus_pays":4,
				"player":[{"suit":"HEART","rank":"TWO","short":"2♥"},{"suit":"HEART","rank":"SEVEN","short":"7♥"},{"suit":"HEART","rank":"NINE","short":"9♥"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeJSON(&buf, tt.report))
			assert.JSONEq(t, tt.want, buf.String())
		})
	}
}
