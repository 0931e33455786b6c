package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/proxyviz/internal/config"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/injector"
	"golang.org/x/sync/errgroup"
)

const defaultConfigPath = "config/viewer.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the viewer configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Provide().Fatal("load config", log.String("path", *configPath), log.Error(err))
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		log.Provide().Fatal("initialize viewer", log.Error(err))
	}
	logger := app.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	if app.Inspector != nil {
		g.Go(func() error { return app.Inspector.Run(ctx) })
	}
	g.Go(func() error {
		defer cancel()
		return newLoop(app).run(ctx)
	})

	runErr := g.Wait()
	cancel()
	if app.Inspector != nil {
		if err := app.Inspector.Detach(); err != nil {
			logger.Error("detach inspector", log.Error(err))
		}
	}
	if err := app.Scene.Close(); err != nil {
		logger.Error("close scene", log.Error(err))
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("viewer stopped", log.Error(runErr))
		os.Exit(1)
	}
	logger.Info("viewer stopped")
}
