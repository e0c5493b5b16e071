package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Config{Level: "debug", ServiceName: "svc", Environment: "testing", JSONFormat: true, Output: buf})

	log.Info().Str("meeting_type", "standup").Msg("analysis completed")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "analysis completed", out["message"])
	assert.Equal(t, "svc", out["service_name"])
	assert.Equal(t, "testing", out["environment"])
	assert.Equal(t, "standup", out["meeting_type"])
	assert.Equal(t, "info", out["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Config{Level: "warn", JSONFormat: true, Output: buf})

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}
