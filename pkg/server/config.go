package server

import (
	"time"

	"github.com/vctt94/threecardpoker/pkg/poker"
	"github.com/vctt94/threecardpoker/pkg/protocol"
)

// ServerConfig holds the listener and per-connection settings.
type ServerConfig struct {
	// Addr is the host:port to listen on. Port 0 picks a free port.
	Addr string
	// StartingChips is the balance each new player is created with.
	StartingChips int64
	// Seed makes decks deterministic when non-zero. Each connection gets
	// its own generator derived from Seed and the connection id.
	Seed int64
	// WriteTimeout bounds every write to a client. A client that cannot
	// take a write in time is disconnected. Zero disables it.
	WriteTimeout time.Duration
	// MaxFrameSize is the largest envelope accepted from a client.
	MaxFrameSize int
	// RejectNegativeWagers makes workers ignore START, PLAY and FOLD
	// requests carrying a negative ante or pair plus.
	RejectNegativeWagers bool
	// HealthAddr, when set, serves the gRPC health service there.
	HealthAddr string
	// OnStatus receives every status line the server produces.
	OnStatus func(line string)
}

// DefaultServerConfig returns the configuration used by tcpsrv when no flags
// are given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          "127.0.0.1:0",
		StartingChips: poker.DefaultStartingChips,
		WriteTimeout:  5 * time.Second,
		MaxFrameSize:  protocol.DefaultMaxFrameSize,
	}
}
