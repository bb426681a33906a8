package config

import "time"

// Config holds runtime settings for the shopsync client.
//
// Fields:
//   - ServerBaseURL: base URL of the storefront API (no trailing slash).
//   - StorageDSN: SQLite DSN of the durable local store. Every client
//     process pointed at the same file shares one credential and cart.
//   - HTTPTimeout: per-request timeout of the API client.
//   - WatchInterval: how often the storage watcher polls the change log.
//   - LogLevel: debug, info, warn or error.
//   - LogFormat: "text" (console) or "json".
type Config struct {
	ServerBaseURL string
	StorageDSN    string
	HTTPTimeout   time.Duration
	WatchInterval time.Duration
	LogLevel      string
	LogFormat     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.StorageDSN = "file:shopsync.db"
	c.HTTPTimeout = 10 * time.Second
	c.WatchInterval = 2 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
