package server

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/vctt94/threecardpoker/pkg/logging"
	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// outboundQueueSize is how many messages may wait for a slow client before
// broadcast lines to it are dropped.
const outboundQueueSize = 256

var (
	errWorkerClosed = errors.New("connection closed")
	errQueueFull    = errors.New("outbound queue full")
)

// Worker serves one client connection. It owns the connection's game
// session and is the only reader of the socket. Everything sent to the
// client goes through the out queue, drained by a single writer goroutine.
type Worker struct {
	id       int
	conn     net.Conn
	cfg      ServerConfig
	registry *Registry
	session  *poker.Session
	log      slog.Logger

	out        chan *protocol.Message
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// NewWorker creates the worker for an accepted connection.
func NewWorker(id int, conn net.Conn, cfg ServerConfig, registry *Registry, logBackend *logging.LogBackend) *Worker {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed + int64(id)))
	}
	return &Worker{
		id:       id,
		conn:     conn,
		cfg:      cfg,
		registry: registry,
		session: poker.NewSession(poker.SessionConfig{
			PlayerID:      id,
			StartingChips: cfg.StartingChips,
			Rng:           rng,
			Log:           logBackend.Logger("GAME"),
		}),
		log:        logBackend.Logger("WRKR"),
		out:        make(chan *protocol.Message, outboundQueueSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// ID returns the connection id.
func (w *Worker) ID() int { return w.id }

// Session returns the worker's game session.
func (w *Worker) Session() *poker.Session { return w.session }

// Send queues m for the client without blocking. When the client is not
// keeping up and the queue is full, m is dropped and errQueueFull returned.
func (w *Worker) Send(m *protocol.Message) error {
	select {
	case <-w.done:
		return errWorkerClosed
	default:
	}
	select {
	case w.out <- m:
		return nil
	case <-w.done:
		return errWorkerClosed
	default:
		return fmt.Errorf("%s to client #%d: %w", m.Type, w.id, errQueueFull)
	}
}

// enqueue queues m, waiting for room if needed. Used for direct replies,
// which must not be dropped.
func (w *Worker) enqueue(m *protocol.Message) error {
	select {
	case <-w.done:
		return errWorkerClosed
	default:
	}
	select {
	case w.out <- m:
		return nil
	case <-w.done:
		return errWorkerClosed
	}
}

// writeLoop writes queued messages in order. A failed write closes the
// connection, which in turn ends the read loop.
func (w *Worker) writeLoop() {
	defer close(w.writerDone)
	for {
		select {
		case <-w.done:
			return
		case m := <-w.out:
			if err := w.write(m); err != nil {
				w.log.Infof("Client #%d: %v", w.id, err)
				w.Close()
				return
			}
		}
	}
}

func (w *Worker) write(m *protocol.Message) error {
	if w.cfg.WriteTimeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout)); err != nil {
			return fmt.Errorf("set write deadline for client #%d: %w", w.id, err)
		}
	}
	if err := protocol.WriteMessage(w.conn, m); err != nil {
		return fmt.Errorf("write %s to client #%d: %w", m.Type, w.id, err)
	}
	return nil
}

// Close closes the connection and stops the writer. It is safe to call
// more than once.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

// Run serves the connection until it fails or is closed.
func (w *Worker) Run() {
	go w.writeLoop()

	registered := false
	defer func() {
		w.Close()
		<-w.writerDone
		if !registered {
			return
		}
		total, _ := w.registry.Unregister(w.id)
		w.registry.Broadcast(fmt.Sprintf("CLIENT:%d|disconnected", w.id))
		w.registry.Broadcast(fmt.Sprintf("Client #%d disconnected. (total: %d)", w.id, total))
	}()
	defer func() {
		if r := recover(); r != nil {
			w.log.Errorf("Client #%d: worker panic: %v\n%s", w.id, r, debug.Stack())
		}
	}()

	if err := w.enqueue(protocol.Welcome()); err != nil {
		w.log.Warnf("Client #%d: %v", w.id, err)
		return
	}

	total := w.registry.Register(w)
	registered = true
	w.registry.Broadcast(fmt.Sprintf("CLIENT:%d|connected", w.id))
	w.registry.Broadcast(fmt.Sprintf("Client connected: #%d (total: %d)", w.id, total))

	r := protocol.NewReader(w.conn, w.cfg.MaxFrameSize)
	for {
		msg, err := r.ReadMessage()
		if err != nil {
			if protocol.IsFrameError(err) {
				w.log.Warnf("Client #%d: dropping frame: %v", w.id, err)
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				w.log.Debugf("Client #%d: connection closed", w.id)
			} else {
				w.log.Infof("Client #%d: read failed: %v", w.id, err)
			}
			return
		}
		w.handle(msg)
	}
}

func (w *Worker) handle(m *protocol.Message) {
	w.log.Tracef("Client #%d: received %s", w.id, m)

	switch m.Type {
	case protocol.TypeStart, protocol.TypePlay, protocol.TypeFold:
		if w.cfg.RejectNegativeWagers && (m.Ante < 0 || m.PairPlus < 0) {
			w.log.Warnf("Client #%d: ignoring %s with negative wager (ante %d, pair plus %d)",
				w.id, m.Type, m.Ante, m.PairPlus)
			return
		}
	}

	switch m.Type {
	case protocol.TypeStart:
		w.handleStart(m)
	case protocol.TypePlay:
		w.handlePlay(m)
	case protocol.TypeFold:
		w.handleFold(m)
	case protocol.TypeChat:
		w.registry.Broadcast(fmt.Sprintf("Client #%d chat.", w.id))
	default:
		w.log.Debugf("Client #%d: ignoring %s", w.id, m.Type)
	}
}

func (w *Worker) handleStart(m *protocol.Message) {
	deal, err := w.session.StartNewHand(m.Ante, m.PairPlus)
	if err != nil {
		w.log.Warnf("Client #%d: start rejected: %v", w.id, err)
		return
	}
	w.registry.Broadcast(fmt.Sprintf("CLIENT:%d|bet ante $%d, pairplus $%d", w.id, m.Ante, m.PairPlus))
	w.reply(protocol.GameDeal(deal))
}

func (w *Worker) handlePlay(m *protocol.Message) {
	res, err := w.session.Resolve(m.Ante, m.PairPlus)
	if err != nil {
		w.log.Warnf("Client #%d: play rejected: %v", w.id, err)
		return
	}
	sign := ""
	if res.Net() >= 0 {
		sign = "+"
	}
	w.registry.Broadcast(fmt.Sprintf("CLIENT:%d|result: %s%d", w.id, sign, res.Net()))
	w.reply(protocol.GameResult(res))
}

func (w *Worker) handleFold(m *protocol.Message) {
	res, err := w.session.Fold(m.Ante, m.PairPlus)
	if err != nil {
		w.log.Warnf("Client #%d: fold rejected: %v", w.id, err)
		return
	}
	w.registry.Broadcast(fmt.Sprintf("CLIENT:%d|folded and lost %d total.", w.id, -res.Net()))
	w.reply(protocol.GameResult(res))
}

func (w *Worker) reply(m *protocol.Message) {
	if err := w.enqueue(m); err != nil {
		w.log.Infof("Client #%d: %v", w.id, err)
	}
}
