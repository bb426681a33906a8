// Package config loads runtime configuration for the shopsync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv), SHOPSYNC_* prefixed.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the storefront API
//	-d string   SQLite DSN of the local durable store
//	-i int      storage watch interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "storage_dsn": "file:shopsync.db",
//	  "http_timeout": "10s",
//	  "watch_interval": "2s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Primary API
//
//   - type Config                — the full client runtime configuration
//   - func LoadConfig() *Config  — defaults, then JSON, env and flags overlays
package config
