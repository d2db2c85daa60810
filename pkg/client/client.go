// Package client is a player-side connection to the house server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// ErrClosed is returned by operations on a closed client.
var ErrClosed = errors.New("client closed")

// Handler receives every message read from the server.
type Handler func(m *protocol.Message)

// Config configures Dial.
type Config struct {
	// Addr is the server's host:port.
	Addr string
	// DialTimeout bounds connection setup. Zero means no timeout beyond
	// the context.
	DialTimeout time.Duration
	// MaxFrameSize bounds messages read from the server.
	MaxFrameSize int
	Log          slog.Logger
}

// Client is a connection to the house server. Sends may be called from any
// goroutine; only one goroutine should receive.
type Client struct {
	conn net.Conn
	r    *protocol.Reader
	log  slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// Dial connects to cfg.Addr.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("server address is required")
	}
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Addr, err)
	}
	return New(conn, cfg), nil
}

// New wraps an established connection.
func New(conn net.Conn, cfg Config) *Client {
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	return &Client{
		conn:   conn,
		r:      protocol.NewReader(conn, cfg.MaxFrameSize),
		log:    log,
		closed: make(chan struct{}),
	}
}

// Send writes one message to the server.
func (c *Client) Send(m *protocol.Message) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.WriteMessage(c.conn, m); err != nil {
		return fmt.Errorf("failed to send %s: %w", m.Type, err)
	}
	c.log.Tracef("Sent %s", m)
	return nil
}

// StartHand asks for a new deal with the given wagers.
func (c *Client) StartHand(ante, pairPlus int64) error {
	return c.Send(protocol.Start(ante, pairPlus))
}

// Play asks the server to resolve the dealt hand.
func (c *Client) Play(playerHand, dealerHand []poker.Card, ante, pairPlus int64) error {
	return c.Send(protocol.Play(playerHand, dealerHand, ante, pairPlus))
}

// Fold forfeits the current hand.
func (c *Client) Fold(playerHand, dealerHand []poker.Card, ante, pairPlus int64) error {
	return c.Send(protocol.Fold(playerHand, dealerHand, ante, pairPlus))
}

// Chat sends free text to the server.
func (c *Client) Chat(text string) error {
	return c.Send(protocol.Chat(text))
}

// Receive blocks for the next message. Frames the client cannot decode are
// logged and skipped.
func (c *Client) Receive() (*protocol.Message, error) {
	for {
		m, err := c.r.ReadMessage()
		if err == nil {
			c.log.Tracef("Received %s", m)
			return m, nil
		}
		if protocol.IsFrameError(err) {
			c.log.Warnf("Skipping frame from server: %v", err)
			continue
		}
		select {
		case <-c.closed:
			return nil, ErrClosed
		default:
		}
		return nil, err
	}
}

// Next returns the next message that is not a LOG, passing log lines to
// onLog if it is not nil.
func (c *Client) Next(onLog func(line string)) (*protocol.Message, error) {
	for {
		m, err := c.Receive()
		if err != nil {
			return nil, err
		}
		if m.Type != protocol.TypeLog {
			return m, nil
		}
		if onLog != nil {
			for _, line := range m.Lines {
				onLog(line)
			}
		}
	}
}

// Run passes every received message to h until the connection fails, the
// client is closed or ctx is done. It returns nil when the server closed
// the connection or the client was closed.
func (c *Client) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		m, err := c.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrClosed) || errors.Is(err, net.ErrClosed) || isEOF(err) {
				return nil
			}
			return err
		}
		h(m)
	}
}

// Close closes the connection, unblocking any pending Receive. It is safe
// to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
