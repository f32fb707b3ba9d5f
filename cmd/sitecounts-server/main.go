package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/site-counts/internal/logging"
	"github.com/tendant/site-counts/pkg/sitecounts/api"
	"github.com/tendant/site-counts/pkg/sitecounts/config"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Environment, os.Getenv("DEBUG") != "")

	block, closer, err := cfg.BuildBlock(context.Background())
	if err != nil {
		slog.Error("Failed to build block", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close repository", "err", err)
		}
	}()

	registry := prometheus.NewRegistry()
	handler := api.NewBlockHandler(block, api.NewMetrics(registry))

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	api.Mount(server.R, handler, registry)

	slog.Info("Site counts server starting",
		"environment", cfg.Environment,
		"database_type", cfg.DatabaseType,
		"locale", cfg.Locale)

	server.Run()
}
