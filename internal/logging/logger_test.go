package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterText(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, slog.LevelInfo, "text")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("navigation committed", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "navigation committed")
	assert.Contains(t, out, "err=boom")
}

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, slog.LevelDebug, "JSON")
	require.NoError(t, err)

	log.Debug("handler finished", "route", "root", "error", "x")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "handler finished", rec["msg"])
	assert.Equal(t, "root", rec["route"])
	assert.Equal(t, "x", rec["err"])
	assert.NotContains(t, rec, "error")
}

func TestNewWriterUnknownFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.EqualError(t, err, `logging: unknown format "xml"`)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
