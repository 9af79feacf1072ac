package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"skyeserver/internal/api"
	"skyeserver/internal/blob"
	"skyeserver/internal/config"
	"skyeserver/internal/logging"
	"skyeserver/internal/server"
	"skyeserver/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	defer closer.Close()

	// Missing credentials are fatal: serving without them would only fail
	// later on every upload.
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Info().
		Str("version", api.Version).
		Msg("starting skye server")

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer store.Close()

	broker := blob.NewBroker(cfg.Storage.APIURL, blob.Credentials{
		KeyID:    cfg.Storage.KeyID,
		AppKey:   cfg.Storage.AppKey,
		BucketID: cfg.Storage.BucketID,
	}, nil, logger.With().Str("component", "b2").Logger())

	srv := server.New(cfg, logger, store, broker)

	stopped := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("received shutdown signal")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
		close(stopped)
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return
	}

	<-stopped
	logger.Info().Msg("server stopped")
}
