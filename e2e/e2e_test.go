// This file contains end-to-end tests that spin up a full house server on a
// loopback listener and drive it with real protocol clients. Nothing is
// mocked; each test gets its own server so tests are isolated and can run in
// parallel.

package e2e

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vctt94/threecardpoker/pkg/client"
	"github.com/vctt94/threecardpoker/pkg/logging"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
	"github.com/vctt94/threecardpoker/pkg/server"
)

// testEnv holds a running server and the status lines it reported.
type testEnv struct {
	t   *testing.T
	srv *server.Server

	mu     sync.Mutex
	status []string
}

// createTestLogBackend creates a LogBackend for testing
func createTestLogBackend(t *testing.T) *logging.LogBackend {
	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: "debug"})
	require.NoError(t, err)
	return logBackend
}

// newTestEnv creates, starts and returns a ready-to-use environment.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{t: t}

	cfg := server.DefaultServerConfig()
	cfg.Seed = 1234
	cfg.OnStatus = func(line string) {
		env.mu.Lock()
		env.status = append(env.status, line)
		env.mu.Unlock()
	}
	env.srv = server.NewServer(cfg, createTestLogBackend(t))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.srv.Serve(lis) }()
	require.Eventually(t, func() bool { return env.srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	return env
}

// Close gracefully shuts down the server.
func (e *testEnv) Close() {
	e.srv.Stop()
}

func (e *testEnv) statusLines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.status...)
}

// connect dials the server and consumes the WELCOME.
func (e *testEnv) connect(ctx context.Context) *client.Client {
	e.t.Helper()
	c, err := client.Dial(ctx, client.Config{Addr: e.srv.Addr().String(), DialTimeout: time.Second})
	require.NoError(e.t, err)
	e.t.Cleanup(func() { c.Close() })

	m, err := c.Next(nil)
	require.NoError(e.t, err)
	require.Equal(e.t, protocol.TypeWelcome, m.Type)
	return c
}

func next(t *testing.T, c *client.Client, want protocol.Type) *protocol.Message {
	t.Helper()
	m, err := c.Next(nil)
	require.NoError(t, err)
	require.Equal(t, want, m.Type)
	return m
}

func assertDisjoint(t *testing.T, player, dealer []poker.Card) {
	t.Helper()
	seen := make(map[poker.Card]bool)
	for _, c := range append(append([]poker.Card(nil), player...), dealer...) {
		assert.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: one player deals and plays a hand
//
// -----------------------------------------------------------------------------
func TestDealAndPlay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	defer env.Close()

	ctx := context.Background()
	c := env.connect(ctx)

	for hand := 0; hand < 20; hand++ {
		require.NoError(t, c.StartHand(10, 5))
		deal := next(t, c, protocol.TypeGameDeal)
		require.Len(t, deal.PlayerHand, 3)
		require.Len(t, deal.DealerHand, 3)
		assertDisjoint(t, deal.PlayerHand, deal.DealerHand)
		assert.Equal(t, int64(10), deal.Ante)
		assert.Equal(t, int64(5), deal.PairPlus)

		require.NoError(t, c.Play(deal.PlayerHand, deal.DealerHand, 10, 5))
		res := next(t, c, protocol.TypeGameResult)
		assert.Equal(t, deal.HandID, res.HandID)
		assert.Equal(t, deal.PlayerHand, res.PlayerHand)
		assert.Equal(t, deal.DealerHand, res.DealerHand)
		assert.Contains(t, []int64{0, 10, 20}, res.Ante)
		assert.Contains(t, []int64{0, 5, 20, 30, 150, 200}, res.PairPlus)

		// The payout follows from the cards alone.
		outcome, err := poker.CompareHands(res.DealerHand, res.PlayerHand)
		require.NoError(t, err)
		assert.Equal(t, poker.AntePayout(outcome, 10), res.Ante)
		if outcome > 0 {
			pp, err := poker.PairPlusPayout(res.PlayerHand, 5)
			require.NoError(t, err)
			assert.Equal(t, pp, res.PairPlus)
		} else {
			assert.Zero(t, res.PairPlus)
		}
	}
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: fold, then a play before the next deal is ignored
//
// -----------------------------------------------------------------------------
func TestFoldAndOutOfOrderPlay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	defer env.Close()

	ctx := context.Background()
	c := env.connect(ctx)

	require.NoError(t, c.StartHand(25, 10))
	deal := next(t, c, protocol.TypeGameDeal)
	require.NoError(t, c.Fold(deal.PlayerHand, deal.DealerHand, 25, 10))
	res := next(t, c, protocol.TypeGameResult)
	assert.Equal(t, int64(-25), res.Ante)
	assert.Equal(t, int64(-10), res.PairPlus)

	// Resolved hands cannot be played again; the server stays silent and
	// the next deal works.
	require.NoError(t, c.Play(deal.PlayerHand, deal.DealerHand, 25, 10))
	require.NoError(t, c.StartHand(5, 0))
	deal2 := next(t, c, protocol.TypeGameDeal)
	assert.NotEqual(t, deal.HandID, deal2.HandID)

	require.Eventually(t, func() bool {
		for _, l := range env.statusLines() {
			if l == "CLIENT:1|folded and lost 35 total." {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: many isolated sessions and the shared log
//
// -----------------------------------------------------------------------------
func TestConcurrentSessionsAndBroadcast(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	defer env.Close()

	ctx := context.Background()
	watcher := env.connect(ctx)

	const players = 6
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := client.Dial(ctx, client.Config{Addr: env.srv.Addr().String()})
			if !assert.NoError(t, err) {
				return
			}
			defer c.Close()
			m, err := c.Next(nil)
			if !assert.NoError(t, err) || !assert.Equal(t, protocol.TypeWelcome, m.Type) {
				return
			}
			for hand := 0; hand < 5; hand++ {
				if !assert.NoError(t, c.StartHand(10, 5)) {
					return
				}
				deal, err := c.Next(nil)
				if !assert.NoError(t, err) || !assert.Equal(t, protocol.TypeGameDeal, deal.Type) {
					return
				}
				if !assert.NoError(t, c.Play(deal.PlayerHand, deal.DealerHand, 10, 5)) {
					return
				}
				res, err := c.Next(nil)
				if !assert.NoError(t, err) || !assert.Equal(t, protocol.TypeGameResult, res.Type) {
					return
				}
				assert.Equal(t, deal.HandID, res.HandID)
			}
		}()
	}
	wg.Wait()

	countDisconnects := func(lines []string) int {
		n := 0
		for _, l := range lines {
			if strings.HasPrefix(l, "Client #") && strings.Contains(l, " disconnected. (total: ") {
				n++
			}
		}
		return n
	}
	require.Eventually(t, func() bool { return countDisconnects(env.srv.Registry().Log()) == players },
		5*time.Second, 10*time.Millisecond)

	// Everything broadcast so far reaches the watcher, in log order.
	var lines []string
	require.NoError(t, watcher.Send(protocol.Chat("done")))
	for {
		m, err := watcher.Receive()
		require.NoError(t, err)
		require.Equal(t, protocol.TypeLog, m.Type)
		lines = append(lines, m.Lines...)
		if m.Lines[0] == "Client #1 chat." {
			break
		}
	}

	var bets, results, disconnects int
	for _, l := range lines {
		switch {
		case strings.Contains(l, "|bet ante $10, pairplus $5"):
			bets++
		case strings.Contains(l, "|result: +"):
			results++
		case strings.HasSuffix(l, "|disconnected"):
			disconnects++
		}
	}
	assert.Equal(t, players*5, bets)
	assert.Equal(t, players*5, results)
	assert.Equal(t, players, disconnects)
	assert.Equal(t, 1, env.srv.Registry().Count())
	assert.Equal(t, env.srv.Registry().Log(), lines)
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: shutdown with connected clients
//
// -----------------------------------------------------------------------------
func TestShutdownClosesClients(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	ctx := context.Background()
	clients := make([]*client.Client, 3)
	for i := range clients {
		clients[i] = env.connect(ctx)
	}
	require.Eventually(t, func() bool { return env.srv.Registry().Count() == len(clients) },
		5*time.Second, 10*time.Millisecond)

	env.Close()
	env.Close()

	for i, c := range clients {
		errCh := make(chan error, 1)
		go func() { errCh <- c.Run(ctx, func(*protocol.Message) {}) }()
		select {
		case err := <-errCh:
			assert.NoError(t, err, "client %d", i)
		case <-time.After(5 * time.Second):
			t.Fatalf("client %d was not disconnected", i)
		}
	}
	assert.Equal(t, 0, env.srv.Registry().Count())
	var last string
	for _, l := range env.statusLines() {
		if strings.HasSuffix(l, "disconnected. (total: 0)") {
			last = l
		}
	}
	assert.NotEmpty(t, last)
}
