package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the gophsocial client.
//
// Fields:
//   - APIBaseURL: base URL of the remote REST API, including the version prefix.
//   - DatabasePath: SQLite file holding the durable credential slot.
//   - RequestTimeout: per-request deadline applied by the HTTP transport.
//   - RequestsPerSecond: outbound throttle; 0 disables it.
//   - LogLevel / LogFormat: slog level name and "text" or "json".
type Config struct {
	APIBaseURL        string        `env:"API_URL"`
	DatabasePath      string        `env:"CLIENT_DB_PATH"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api/v1"
	c.DatabasePath = "session.db"
	c.RequestTimeout = 30 * time.Second
	c.RequestsPerSecond = 0
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
