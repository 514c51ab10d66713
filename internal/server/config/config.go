// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the development API server.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Development only.
//   - AccessTokenValidityDuration: access token lifetime.
//   - SeedEmail / SeedUsername / SeedPassword: optional verified account
//     created at startup; ignored unless all three are set.
//   - LogLevel: slog level name.
type Config struct {
	EndpointAddr                string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	SeedEmail                   string
	SeedUsername                string
	SeedPassword                string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure and only meant for local runs.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8000"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
}

// HasSeedUser reports whether a startup account is configured.
func (c *Config) HasSeedUser() bool {
	return c.SeedEmail != "" && c.SeedUsername != "" && c.SeedPassword != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
