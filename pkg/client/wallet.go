package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// ErrInsufficientFunds is returned when a bet exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the player's displayed balance. The server never tracks money;
// the wallet takes stakes when bets are placed and credits what a
// GAME_RESULT pays back.
type Wallet struct {
	mu       sync.Mutex
	balance  int64
	ante     int64
	pairPlus int64
}

// NewWallet returns a wallet holding balance.
func NewWallet(balance int64) *Wallet {
	return &Wallet{balance: balance}
}

// Balance returns the current balance.
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Bets returns the wagers currently on the table.
func (w *Wallet) Bets() (ante, pairPlus int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ante, w.pairPlus
}

// Bet takes both stakes from the balance.
func (w *Wallet) Bet(ante, pairPlus int64) error {
	if ante < 0 || pairPlus < 0 {
		return fmt.Errorf("negative wager: ante %d, pair plus %d", ante, pairPlus)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if ante+pairPlus > w.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, ante+pairPlus, w.balance)
	}
	w.balance -= ante + pairPlus
	w.ante, w.pairPlus = ante, pairPlus
	return nil
}

// Settle applies a GAME_RESULT and clears the bets. Positive amounts are
// credited; negative amounts are stakes Bet already took. It returns the
// net of the result as reported by the server. Other message types are
// ignored.
func (w *Wallet) Settle(m *protocol.Message) int64 {
	if m.Type != protocol.TypeGameResult {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if m.Ante > 0 {
		w.balance += m.Ante
	}
	if m.PairPlus > 0 {
		w.balance += m.PairPlus
	}
	w.ante, w.pairPlus = 0, 0
	return m.Ante + m.PairPlus
}
