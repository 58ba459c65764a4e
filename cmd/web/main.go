package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/huntdesk/internal/app"
	"github.com/myrjola/huntdesk/internal/config"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/logging"
	"github.com/myrjola/huntdesk/internal/pprofserver"
)

type application struct {
	logger   *slog.Logger
	services *app.Services
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "create services")
	}
	defer func() {
		if closeErr := services.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close services", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))

	a := application{
		logger:   logger,
		services: services,
	}

	if err = a.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
