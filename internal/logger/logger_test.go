package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(int(slog.LevelDebug), "json", &buf)

	l.Info("Auth service: user registered", "email", "a@x.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Auth service: user registered", entry["msg"])
	assert.Equal(t, "a@x.com", entry["email"])
}

func TestNewWithFormat_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(int(slog.LevelWarn), "text", &buf)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(0, "text", &buf).With("component", "router")

	l.Info("registered routes")
	assert.Contains(t, buf.String(), "component=router")
}
