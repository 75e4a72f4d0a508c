package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("watchdog")
	l.Info().Str("event", "armed").Msg("idle timer armed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "watchdog", entry["component"])
	assert.Equal(t, "digimonnaie", entry["service"])
	assert.Equal(t, "armed", entry["event"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Base()
	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestOpenFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "console.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("x\n")
	require.NoError(t, err)
}
