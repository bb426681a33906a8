package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdeenkov/shopsync/internal/buildinfo"
	"github.com/avdeenkov/shopsync/internal/client/cli"
	"github.com/avdeenkov/shopsync/internal/client/config"
	"github.com/avdeenkov/shopsync/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	var logger logging.Logger
	if cfg.LogFormat == "json" {
		logger = logging.NewJSON(os.Stderr, cfg.LogLevel)
	} else {
		logger = logging.NewText(os.Stderr, cfg.LogLevel)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
