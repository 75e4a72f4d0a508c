package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimonnaie/console/internal/session"
)

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDuration("0s")
	assert.Error(t, err)
	_, err = parseDuration("soon")
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "console.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  base_url: https://file.example/api\n"), 0o600))

	require.NoError(t, rootCmd.ParseFlags([]string{
		"--config", cfgPath,
		"--idle-timeout", "45s",
		"--state-dir", dir,
	}))
	t.Cleanup(func() {
		configFile, idleTimeout, stateDir = "", "", ""
	})

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example/api", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Session.IdleTimeout)
	assert.Equal(t, dir, cfg.Session.StateDir)
}

func TestLogoutAndWhoami(t *testing.T) {
	dir := t.TempDir()
	store, err := session.Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Login("tok", "admin-7", json.RawMessage(`{}`)))

	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args,
			"--state-dir", dir,
			"--idle-timeout", "2m",
			"--log-file", filepath.Join(dir, "test.log"),
		))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	assert.Contains(t, run("whoami"), "admin-7")
	assert.Contains(t, run("logout"), "Logged out.")
	assert.Contains(t, run("whoami"), "Not logged in.")

	require.NoError(t, store.Reload())
	assert.False(t, store.Authenticated())
}
