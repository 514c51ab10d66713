package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-e string   seed account e-mail
//	-n string   seed account username
//	-p string   seed account password
//	-l string   log level
//
// Notes:
//   - args are first filtered to only the flags handled here using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The duration flag is accepted as an integer in minutes and then
//     converted to a time.Duration value.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-e", "-n", "-p", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.SeedEmail, "e", config.SeedEmail, "seed account e-mail")
	fs.StringVar(&config.SeedUsername, "n", config.SeedUsername, "seed account username")
	fs.StringVar(&config.SeedPassword, "p", config.SeedPassword, "seed account password")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
