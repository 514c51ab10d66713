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

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr":                  "127.0.0.1:9000",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "90m",
		"seed_email":                     "a@b.com",
		"seed_username":                  "alice",
		"seed_password":                  "pw",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "127.0.0.1:9000", cfg.EndpointAddr)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 90*time.Minute, cfg.AccessTokenValidityDuration)
		assert.True(t, cfg.HasSeedUser())
		assert.Equal(t, "info", cfg.LogLevel, "absent keys keep defaults")
	})

	t.Run("no flag, no change", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, nil)
		assert.Equal(t, ":8000", cfg.EndpointAddr)
	})

	t.Run("flags override json", func(t *testing.T) {
		args := []string{"-c", path, "-a", ":7000"}
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, args)
		parseFlags(cfg, args)
		assert.Equal(t, ":7000", cfg.EndpointAddr)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
	})

	t.Run("missing file panics", func(t *testing.T) {
		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})
}
