package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

func TestWalletBet(t *testing.T) {
	w := NewWallet(500)
	require.NoError(t, w.Bet(10, 5))
	assert.Equal(t, int64(485), w.Balance())

	ante, pp := w.Bets()
	assert.Equal(t, int64(10), ante)
	assert.Equal(t, int64(5), pp)

	assert.ErrorIs(t, w.Bet(400, 100), ErrInsufficientFunds)
	assert.Error(t, w.Bet(-1, 0))
	assert.Equal(t, int64(485), w.Balance())
}

func TestWalletSettle(t *testing.T) {
	tests := []struct {
		name        string
		ante, pp    int64
		result      *protocol.Message
		wantBalance int64
		wantNet     int64
	}{
		{
			name: "win with pair",
			ante: 10, pp: 5,
			result:      &protocol.Message{Type: protocol.TypeGameResult, Ante: 20, PairPlus: 5},
			wantBalance: 510,
			wantNet:     25,
		},
		{
			name: "push",
			ante: 10, pp: 5,
			result:      &protocol.Message{Type: protocol.TypeGameResult, Ante: 10},
			wantBalance: 495,
			wantNet:     10,
		},
		{
			name: "loss",
			ante: 10, pp: 5,
			result:      &protocol.Message{Type: protocol.TypeGameResult},
			wantBalance: 485,
			wantNet:     0,
		},
		{
			name: "fold",
			ante: 10, pp: 5,
			result:      &protocol.Message{Type: protocol.TypeGameResult, Ante: -10, PairPlus: -5},
			wantBalance: 485,
			wantNet:     -15,
		},
		{
			name: "not a result",
			ante: 10, pp: 5,
			result:      protocol.Log("x"),
			wantBalance: 485,
			wantNet:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWallet(500)
			require.NoError(t, w.Bet(tt.ante, tt.pp))
			assert.Equal(t, tt.wantNet, w.Settle(tt.result))
			assert.Equal(t, tt.wantBalance, w.Balance())
		})
	}
}
