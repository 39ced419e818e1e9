package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONToConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "test.log")

	require.NoError(t, Init(Options{Level: "debug", File: file, MaxSizeMB: 1, Console: &buf}))
	t.Cleanup(Close)

	log.Info().Str("image", "Im1").Msg("selection saved")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev))
	assert.Equal(t, "selection saved", ev["message"])
	assert.Equal(t, "Im1", ev["image"])
	assert.Equal(t, serviceName, ev["service"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "selection saved")
}

func TestInitFallsBackToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "not-a-level", Console: &buf}))
	t.Cleanup(Close)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentTagsEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Console: &buf}))
	t.Cleanup(Close)

	l := Component("selector")
	l.Info().Msg("ready")

	assert.Contains(t, buf.String(), `"component":"selector"`)
}
