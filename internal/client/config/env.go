package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables named in the struct tags.
// A .env file in the working directory is loaded first when present; it
// never overrides variables already set in the process environment.
// Unset variables leave the current value untouched.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
