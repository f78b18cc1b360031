package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gift-advisor/internal/adapter/giftapi"
	"gift-advisor/internal/adapter/tui/gifts"
	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/logger"
	"gift-advisor/internal/infra/tracer"
	"gift-advisor/internal/usecase/lifecycle"
)

// runTUI opens the terminal client against the configured gift API.
func runTUI(flags cliFlags) error {
	// 1. Config
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	target, _ := domain.ParseTarget(cfg.Client.Mode)

	// 2. Logger & Tracer. Terminal output belongs to the UI.
	cfg.Logger.Output = tuiLogOutput(cfg.Logger.Output)
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Gift API client
	client, err := giftapi.New(cfg.Client, log)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}

	// 4. Request lifecycle + UI
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := lifecycle.NewWithContext(ctx, client, log)
	log.Info("tui starting", "server", client.BaseURL(), "mode", string(target))

	app := gifts.NewApp(controller, client, client.BaseURL(), target, log)
	return app.Run(ctx)
}

// tuiLogOutput moves terminal log outputs to a file under the user cache
// directory. File and discard outputs are kept.
func tuiLogOutput(output string) string {
	switch strings.ToLower(output) {
	case "", "stderr", "stdout":
	default:
		return output
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "discard"
	}
	return filepath.Join(dir, "giftadvisor", "tui.log")
}
