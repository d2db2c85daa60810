package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogConfig controls where log lines go and how verbose they are.
type LogConfig struct {
	// LogFile is the path of the rotated log file. Empty logs to stdout only.
	LogFile string
	// DebugLevel is one of trace, debug, info, warn, error, critical, off.
	DebugLevel string
	// MaxLogFiles is the number of rolled files kept next to LogFile.
	MaxLogFiles int
}

// LogBackend hands out subsystem loggers that share one writer and level.
type LogBackend struct {
	backend *slog.Backend
	rotator *rotator.Rotator
	level   slog.Level

	mu      sync.Mutex
	loggers map[string]slog.Logger
}

type logWriter struct {
	stdout  io.Writer
	rotator *rotator.Rotator
}

func (w logWriter) Write(p []byte) (int, error) {
	w.stdout.Write(p)
	if w.rotator != nil {
		w.rotator.Write(p)
	}
	return len(p), nil
}

// NewLogBackend creates the backend described by cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	level := slog.LevelInfo
	if cfg.DebugLevel != "" {
		lvl, ok := slog.LevelFromString(cfg.DebugLevel)
		if !ok {
			return nil, fmt.Errorf("invalid debug level %q", cfg.DebugLevel)
		}
		level = lvl
	}

	var r *rotator.Rotator
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		maxRolls := cfg.MaxLogFiles
		if maxRolls <= 0 {
			maxRolls = 3
		}
		var err error
		r, err = rotator.New(cfg.LogFile, 10*1024, false, maxRolls)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
	}

	return &LogBackend{
		backend: slog.NewBackend(logWriter{stdout: os.Stdout, rotator: r}),
		rotator: r,
		level:   level,
		loggers: make(map[string]slog.Logger),
	}, nil
}

// Logger returns the logger for subsystem, creating it on first use.
func (b *LogBackend) Logger(subsystem string) slog.Logger {
	if b == nil || b.backend == nil {
		return slog.Disabled
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.loggers[subsystem]; ok {
		return l
	}
	l := b.backend.Logger(subsystem)
	l.SetLevel(b.level)
	b.loggers[subsystem] = l
	return l
}

// SetLevel changes the level of every logger handed out so far and of the
// ones created later.
func (b *LogBackend) SetLevel(level slog.Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = level
	for _, l := range b.loggers {
		l.SetLevel(level)
	}
}

// Close flushes and closes the log file, if any.
func (b *LogBackend) Close() error {
	if b == nil || b.rotator == nil {
		return nil
	}
	return b.rotator.Close()
}
