package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/dmitrijs2005/gophsocial/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero so a partial file only overrides what it names.
type JsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	DatabasePath      *string         `json:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
}

// parseJson overlays cfg with values from the file named by -c/-config in
// args. Without either flag it does nothing. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
}
