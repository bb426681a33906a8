package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// envConfig is a DTO for the environment stage. Pointer fields distinguish
// "variable not set" from a zero value, so unset variables never clobber
// values from earlier stages.
type envConfig struct {
	ServerBaseURL *string        `env:"SHOPSYNC_SERVER_URL"`
	StorageDSN    *string        `env:"SHOPSYNC_STORAGE_DSN"`
	HTTPTimeout   *time.Duration `env:"SHOPSYNC_HTTP_TIMEOUT"`
	WatchInterval *time.Duration `env:"SHOPSYNC_WATCH_INTERVAL"`
	LogLevel      *string        `env:"SHOPSYNC_LOG_LEVEL"`
	LogFormat     *string        `env:"SHOPSYNC_LOG_FORMAT"`
}

// parseEnv overlays cfg with SHOPSYNC_* environment variables. Panics on
// malformed values (e.g. an unparseable duration).
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := envconfig.Process(context.Background(), &ec); err != nil {
		panic(err)
	}

	if ec.ServerBaseURL != nil {
		cfg.ServerBaseURL = *ec.ServerBaseURL
	}
	if ec.StorageDSN != nil {
		cfg.StorageDSN = *ec.StorageDSN
	}
	if ec.HTTPTimeout != nil {
		cfg.HTTPTimeout = *ec.HTTPTimeout
	}
	if ec.WatchInterval != nil {
		cfg.WatchInterval = *ec.WatchInterval
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
	if ec.LogFormat != nil {
		cfg.LogFormat = *ec.LogFormat
	}
}
