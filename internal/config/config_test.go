package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "system", cfg.Theme)
	assert.Equal(t, "monday", cfg.WeekStart)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
listen: ":9090"
timezone: "America/New_York"
theme: dark
week_start: sunday
gist:
  token: abc
  id: g123
sync:
  flush: "0 * * * *"
  debounce_seconds: 5
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, "abc", cfg.Gist.Token)
	assert.Equal(t, "g123", cfg.Gist.ID)
	assert.Equal(t, "0 * * * *", cfg.Sync.FlushCron)
	assert.Equal(t, 5*time.Second, cfg.Debounce())
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestNormalizeFallsBackOnBadValues(t *testing.T) {
	cfg := &Config{Theme: "neon", WeekStart: "friday", Sync: SyncConfig{DebounceSeconds: -1}}
	cfg.Normalize()

	assert.Equal(t, "system", cfg.Theme)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, 2, cfg.Sync.DebounceSeconds)
	assert.NotEmpty(t, cfg.Listen)
	assert.NotEmpty(t, cfg.MirrorDir)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GISTCAL_TOKEN", "envtok")
	t.Setenv("GISTCAL_GIST_ID", "envgist")
	t.Setenv("GISTCAL_PARSER_URL", "https://parse.example.com")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "envtok", cfg.Gist.Token)
	assert.Equal(t, "envgist", cfg.Gist.ID)
	assert.Equal(t, "https://parse.example.com", cfg.Parser.URL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Listen = ":7777"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", got.Listen)
	require.NotNil(t, got.BasicAuth)
	assert.Equal(t, "u", got.BasicAuth.Username)
}
