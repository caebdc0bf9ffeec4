package main

import (
	"context"
	"crm-rep/internal/app"
	"crm-rep/internal/config"
	"crm-rep/internal/console"
	"crm-rep/internal/infrastructure/logging"
	"crm-rep/internal/infrastructure/restclient"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configDir := flag.String("config", ".", "directory holding config.yml and .env")
	baseURL := flag.String("base-url", "", "backend base URL (overrides client.baseURL)")
	flag.Parse()

	if err := run(*configDir, *baseURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir, baseURL string) error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}

	// stdout is the UI; logs go to stderr unless configured otherwise.
	if cfg.Logger.Output == "" || cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}
	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Representative console starting", "baseURL", cfg.Client.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := restclient.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout, logger)
	a := app.New(client, logger)

	if cfg.Session.RefreshSchedule != "" {
		if err := a.StartTokenRefresher(cfg.Session.RefreshSchedule); err != nil {
			logger.Warn("Token refresher disabled", slog.Any("error", err))
		}
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Stop(stopCtx)
	}()

	err = console.New(a, os.Stdin, os.Stdout, logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
