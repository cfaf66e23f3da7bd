package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Adda-Baaj/regwatch/internal/app"
	"github.com/Adda-Baaj/regwatch/internal/config"
	"github.com/Adda-Baaj/regwatch/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{Level: settings.LogLevel, Format: settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(settings.ConfigPath)
	if err != nil {
		log.ErrorObj("invalid configuration", "config_invalid", map[string]any{
			"path":  settings.ConfigPath,
			"error": err.Error(),
		})
		return 1
	}

	ctx := context.Background()

	deps, err := app.New(ctx, settings, cfg, log)
	if err != nil {
		log.ErrorObj("startup failed", "startup_failed", map[string]any{"error": err.Error()})
		return 1
	}

	if err := app.Run(ctx, deps); err != nil {
		log.ErrorObj("run failed", "run_failed", map[string]any{"error": err.Error()})
		return 1
	}
	return 0
}
