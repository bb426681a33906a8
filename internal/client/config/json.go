package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avdeenkov/shopsync/internal/flagx"
	"github.com/avdeenkov/shopsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL string         `json:"server_base_url"`
	StorageDSN    string         `json:"storage_dsn"`
	HTTPTimeout   timex.Duration `json:"http_timeout"`
	WatchInterval timex.Duration `json:"watch_interval"`
	LogLevel      string         `json:"log_level"`
	LogFormat     string         `json:"log_format"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags via flagx.ConfigFileFlags; when neither is
// present the function returns without touching cfg. Only fields actually
// set in the file override the current values. Panics on read or unmarshal
// errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.StorageDSN != "" {
		cfg.StorageDSN = jc.StorageDSN
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}
	if jc.WatchInterval.Duration != 0 {
		cfg.WatchInterval = time.Duration(jc.WatchInterval.Duration)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
