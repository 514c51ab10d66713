package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"api_base_url":        "https://api.example/v1",
		"database_path":       "/var/lib/client.db",
		"request_timeout":     "10s",
		"requests_per_second": 4,
		"log_level":           "debug",
		"log_format":          "json",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"request_timeout": 5000000000,
	})

	t.Run("loads every field", func(t *testing.T) {
		cfg := &Config{}
		parseJson(cfg, []string{"-config", full})

		assert.Equal(t, "https://api.example/v1", cfg.APIBaseURL)
		assert.Equal(t, "/var/lib/client.db", cfg.DatabasePath)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 4.0, cfg.RequestsPerSecond)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", partial})

		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIBaseURL)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "defaults", RequestTimeout: 42 * time.Second}
		parseJson(cfg, nil)

		assert.Equal(t, "defaults", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-config", bad}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})
}
