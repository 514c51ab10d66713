package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote API
//	-d string   SQLite credential database path
//	-t int      request timeout in seconds
//	-r float    outbound requests per second
//	-l string   log level
//
// Only these flags are looked at (flagx.FilterArgs), so -c and any flags owned
// by other components do not make parsing fail.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the remote API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the credential database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "outbound requests per second, 0 = unlimited")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
