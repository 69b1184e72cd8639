package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()
	logger.Info("starting",
		zap.String("config", configPath),
		zap.String("db", cfg.DBPath),
		zap.Bool("first_launch", firstLaunch))

	store, err := storage.Open(cfg.DBPath, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	svc := service.New(store, logger.Named("service"))

	if err := ui.Run(svc, cfg); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
