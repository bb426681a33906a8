package config

import (
	"flag"
	"os"
	"time"

	"github.com/avdeenkov/shopsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the storefront API (default from Config)
//	-d string   SQLite DSN of the local store (default from Config)
//	-i int      storage watch interval in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the storefront API")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "SQLite DSN of the local store")
	watchInterval := fs.Int("i", int(cfg.WatchInterval.Seconds()), "storage watch interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.WatchInterval = time.Duration(*watchInterval) * time.Second
}
