package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.log")
	logger, closer, err := New(Options{File: path, Level: slog.LevelInfo})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("relay connected", "url", "wss://bot.example.com")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "relay connected", rec["msg"])
	assert.Equal(t, "wss://bot.example.com", rec["url"])
}

func TestNewFansOut(t *testing.T) {
	var text bytes.Buffer
	status := NewStatusHandler(slog.LevelWarn)
	logger, _, err := New(Options{Text: &text, Status: status, Level: slog.LevelDebug})
	require.NoError(t, err)

	logger.Info("guilds loaded", "count", 3)
	_, ok := status.Latest()
	assert.False(t, ok, "info should not reach the status line")

	logger.With("component", "directory").Warn("load members failed", "error", errors.New("timeout"))

	entry, ok := status.Latest()
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, entry.Level)
	assert.Equal(t, "load members failed (timeout)", entry.Message)
	assert.Contains(t, text.String(), "guilds loaded")
	assert.Contains(t, text.String(), "load members failed")
}

func TestNewWithoutSinksDiscards(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	logger.Error("nowhere")
	assert.NoError(t, closer.Close())
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "nexus.log")})
	assert.Error(t, err)
}

func TestStatusHandlerClear(t *testing.T) {
	status := NewStatusHandler(slog.LevelWarn)
	slog.New(status).Error("boom")
	_, ok := status.Latest()
	require.True(t, ok)

	status.Clear()
	_, ok = status.Latest()
	assert.False(t, ok)
}

func TestStatusHandlerAttrError(t *testing.T) {
	status := NewStatusHandler(slog.LevelWarn)
	slog.New(status).With("error", "dial refused").Warn("relay disconnected")

	entry, ok := status.Latest()
	require.True(t, ok)
	assert.Equal(t, "relay disconnected (dial refused)", entry.Message)
	assert.Contains(t, entry.String(), "WARN: relay disconnected")
}
