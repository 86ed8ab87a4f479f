package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"info":    log.InfoLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Production: true, Writer: &buf})
	require.NoError(t, err)

	l.Info("entry saved", "date", "2025-01-01")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "entry saved", rec["msg"])
	assert.Equal(t, "2025-01-01", rec["date"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "diary.log")
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", File: path, Writer: &buf})
	require.NoError(t, err)

	l.Info("to file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
	assert.Contains(t, buf.String(), "to file")
}
