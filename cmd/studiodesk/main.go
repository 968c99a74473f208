// Command studiodesk serves the back-office API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/studiodesk/pkg/config"
	"github.com/dmitrymomot/studiodesk/pkg/httpserver"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "startup failed", logger.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.ErrorContext(ctx, "shutdown cleanup failed", logger.Error(err))
		}
	}()

	return httpserver.New(cfg.HTTP, log).Run(ctx, a.handler)
}
