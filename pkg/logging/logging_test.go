package logging

import (
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogBackendLevels(t *testing.T) {
	b, err := NewLogBackend(LogConfig{DebugLevel: "debug"})
	require.NoError(t, err)
	defer b.Close()

	l := b.Logger("TEST")
	assert.Equal(t, slog.LevelDebug, l.Level())
	assert.Equal(t, l, b.Logger("TEST"), "subsystem loggers are cached")

	b.SetLevel(slog.LevelWarn)
	assert.Equal(t, slog.LevelWarn, l.Level())
	assert.Equal(t, slog.LevelWarn, b.Logger("OTHR").Level())
}

func TestNewLogBackendInvalidLevel(t *testing.T) {
	_, err := NewLogBackend(LogConfig{DebugLevel: "loud"})
	require.Error(t, err)
}

func TestNewLogBackendWithFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "tcpsrv.log")
	b, err := NewLogBackend(LogConfig{LogFile: logFile, DebugLevel: "info", MaxLogFiles: 2})
	require.NoError(t, err)
	b.Logger("SRVR").Infof("hello")
	require.NoError(t, b.Close())
}

func TestNilBackendIsDisabled(t *testing.T) {
	var b *LogBackend
	assert.Equal(t, slog.Disabled, b.Logger("X"))
	assert.NoError(t, b.Close())
}
