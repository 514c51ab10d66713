package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/dmitrijs2005/gophsocial/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for the token lifetime, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// Only non-empty values override the current Config.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	SeedEmail                   string         `json:"seed_email"`
	SeedUsername                string         `json:"seed_username"`
	SeedPassword                string         `json:"seed_password"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config in args. If neither flag is present no file is loaded. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.JSONConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.EndpointAddr, c.EndpointAddr)
	setIfNotEmpty(&config.SecretKey, c.SecretKey)
	setIfNotEmpty(&config.SeedEmail, c.SeedEmail)
	setIfNotEmpty(&config.SeedUsername, c.SeedUsername)
	setIfNotEmpty(&config.SeedPassword, c.SeedPassword)
	setIfNotEmpty(&config.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
