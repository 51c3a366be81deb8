package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkarev/kulinaria/internal/api"
	"github.com/mkarev/kulinaria/internal/config"
	"github.com/mkarev/kulinaria/internal/env"
	"github.com/mkarev/kulinaria/internal/log"
	"github.com/mkarev/kulinaria/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	logger := log.New(nil)

	conf, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	images, err := setup.ImageStore(setupCtx, &conf)
	if err != nil {
		logger.Error("failed to setup image store", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := setup.Database(setupCtx, &conf)
	if err != nil {
		logger.Error("failed to setup database", slog.Any("error", err))
		os.Exit(1)
	}

	logger.DebugContext(ctx, "seeding tag catalog")
	if err := setup.Tags(setupCtx, db, logger); err != nil {
		logger.Error("failed to seed tags", slog.Any("error", err))
		os.Exit(1)
	}

	logger.DebugContext(ctx, "seeding ingredient catalog")
	if err := setup.Ingredients(setupCtx, db, logger); err != nil {
		logger.Error("failed to seed ingredients", slog.Any("error", err))
		os.Exit(1)
	}

	env := &env.Env{
		Logger:   logger,
		Database: db,
		Config:   &conf,
		Images:   images,
	}

	if err := api.Start(env); err != nil {
		env.Logger.Error("API Failed", slog.Any("error", err))
		os.Exit(1)
	}
}
