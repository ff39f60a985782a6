package logging

import (
	"bytes"
	"testing"

	"github.com/bnema/miniapp-telemetry/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewJSONWritesStructuredEvents(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug().Str("component", "lifecycle").Msg("session started")

	line := buf.String()
	assert.Equal(t, "debug", gjson.Get(line, "level").String())
	assert.Equal(t, "lifecycle", gjson.Get(line, "component").String())
	assert.Equal(t, "session started", gjson.Get(line, "message").String())
	assert.True(t, gjson.Get(line, "time").Exists())
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LogConfig{Level: "warn", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "WRN")
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LogConfig{}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
