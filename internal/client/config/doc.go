// Package config loads runtime configuration for the gophsocial client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables, optionally from a .env file (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-d string   path of the SQLite credential database
//	-t int      request timeout (seconds)
//	-r float    outbound requests per second (0 = unlimited)
//	-l string   log level
//
// Environment
//
//	API_URL, CLIENT_DB_PATH, REQUEST_TIMEOUT ("30s"), REQUESTS_PER_SECOND,
//	LOG_LEVEL, LOG_FORMAT
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/api/v1",
//	  "database_path": "session.db",
//	  "request_timeout": "30s",
//	  "requests_per_second": 5,
//	  "log_level": "debug",
//	  "log_format": "json"
//	}
package config
