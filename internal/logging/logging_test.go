package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, true, false, false)

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
}

func TestSetup_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, false, false, false)

	log.Warn().Msg("console line")

	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "console line")
}

func TestSetup_LevelSelection(t *testing.T) {
	var buf bytes.Buffer

	Setup(&buf, true, false, true)
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	Setup(&buf, true, true, false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup(&buf, true, false, false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
