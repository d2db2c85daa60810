package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/decred/slog"
	"github.com/vctt94/threecardpoker/pkg/logging"
)

// ErrServerClosed is returned by Serve after Stop.
var ErrServerClosed = errors.New("server closed")

// Server is the house: it accepts connections and runs one Worker per
// connection, each with its own isolated game.
type Server struct {
	cfg        ServerConfig
	log        slog.Logger
	logBackend *logging.LogBackend
	registry   *Registry
	health     *HealthServer

	mu       sync.Mutex
	listener net.Listener
	workers  map[int]*Worker
	closed   bool

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer creates a server. Zero fields in cfg take their defaults.
func NewServer(cfg ServerConfig, logBackend *logging.LogBackend) *Server {
	def := DefaultServerConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.StartingChips == 0 {
		cfg.StartingChips = def.StartingChips
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = def.MaxFrameSize
	}

	log := logBackend.Logger("SRVR")
	return &Server{
		cfg:        cfg,
		log:        log,
		logBackend: logBackend,
		registry:   NewRegistry(log, cfg.OnStatus),
		health:     newHealthServer(log),
		workers:    make(map[int]*Worker),
	}
}

// Registry returns the server's connection registry.
func (s *Server) Registry() *Registry { return s.registry }

// Health returns the server's health endpoint. It only answers once its
// Serve method is given a listener.
func (s *Server) Health() *HealthServer { return s.health }

// Config returns the effective configuration.
func (s *Server) Config() ServerConfig { return s.cfg }

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe listens on cfg.Addr and serves it.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called, then returns
// ErrServerClosed. ln is closed when Serve returns.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.health.SetServing(true)
	s.listener = ln
	s.mu.Unlock()

	s.log.Infof("Server listening on %s", ln.Addr())
	s.status(fmt.Sprintf("Server listening on %s", ln.Addr()))

	defer ln.Close()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warnf("Accept failed: %v", err)
				continue
			}
			s.status(fmt.Sprintf("Accept failed: %v", err))
			return fmt.Errorf("accept: %w", err)
		}
		s.startWorker(conn)
	}
}

func (s *Server) startWorker(conn net.Conn) {
	id := s.registry.NextID()
	w := NewWorker(id, conn, s.cfg, s.registry, s.logBackend)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.workers[id] = w
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Debugf("Accepted client #%d from %s", id, conn.RemoteAddr())
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.workers, id)
			s.mu.Unlock()
		}()
		w.Run()
	}()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) status(line string) {
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(line)
	}
}

// Stop closes the listener and every live connection and waits for their
// workers to finish. It is safe to call more than once and before Serve.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		ln := s.listener
		workers := make([]*Worker, 0, len(s.workers))
		for _, w := range s.workers {
			workers = append(workers, w)
		}
		s.mu.Unlock()

		s.health.Shutdown()
		if ln != nil {
			ln.Close()
		}
		for _, w := range workers {
			w.Close()
		}
		s.wg.Wait()
		s.log.Infof("Server stopped")
	})
}
