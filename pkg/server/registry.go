package server

import (
	"sort"
	"sync"

	"github.com/decred/slog"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// Peer is a live connection the registry can push log lines to.
type Peer interface {
	ID() int
	Send(m *protocol.Message) error
	Close() error
}

// Registry tracks live connections, hands out connection ids and keeps the
// append-only server log that is fanned out to every connection.
type Registry struct {
	log      slog.Logger
	onStatus func(string)

	mu     sync.Mutex
	nextID int
	peers  map[int]Peer
	lines  []string

	// fanoutMu keeps broadcasts in log order on every peer's queue without
	// holding mu while sending.
	fanoutMu sync.Mutex
}

// NewRegistry creates an empty registry. onStatus may be nil.
func NewRegistry(log slog.Logger, onStatus func(string)) *Registry {
	if log == nil {
		log = slog.Disabled
	}
	return &Registry{
		log:      log,
		onStatus: onStatus,
		nextID:   1,
		peers:    make(map[int]Peer),
	}
}

// NextID reserves the next connection id. Ids start at 1 and are never
// reused.
func (r *Registry) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// Register adds p and returns the number of live peers.
func (r *Registry) Register(p Peer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.ID()] = p
	return len(r.peers)
}

// Unregister removes the peer with the given id and returns the number of
// live peers left. The bool is false if it was not registered.
func (r *Registry) Unregister(id int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.peers[id]
	delete(r.peers, id)
	return len(r.peers), ok
}

// Count returns the number of live peers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// Peers returns a snapshot of the live peers ordered by id.
func (r *Registry) Peers() []Peer {
	r.mu.Lock()
	peers := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	r.mu.Unlock()

	sort.Slice(peers, func(i, j int) bool { return peers[i].ID() < peers[j].ID() })
	return peers
}

// Log returns a copy of every line broadcast so far.
func (r *Registry) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Broadcast appends line to the log, reports it to the status callback and
// sends it as a LOG message to every live peer. Peer.Send must not block;
// a peer that cannot take the line misses it, and the failure is only
// logged.
func (r *Registry) Broadcast(line string) {
	r.fanoutMu.Lock()
	defer r.fanoutMu.Unlock()

	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()

	r.log.Debugf("Broadcast: %s", line)
	if r.onStatus != nil {
		r.onStatus(line)
	}

	msg := protocol.Log(line)
	for _, p := range r.Peers() {
		if err := p.Send(msg); err != nil {
			r.log.Debugf("Dropped log line for client #%d: %v", p.ID(), err)
		}
	}
}
