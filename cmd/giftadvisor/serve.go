package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"gift-advisor/internal/adapter/advisor"
	"gift-advisor/internal/adapter/giftserver"
	"gift-advisor/internal/infra/logger"
	"gift-advisor/internal/infra/tracer"
)

// runServe starts the gift API and blocks until SIGINT/SIGTERM.
func runServe(flags cliFlags) error {
	// 1. Config
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
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

	// 3. Advisor
	adv, err := advisor.New(cfg, log)
	if err != nil {
		return fmt.Errorf("advisor: %w", err)
	}

	// 4. HTTP server
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := giftserver.New(cfg.Server, cfg.TeamMembers, adv, log)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down")

	// 5. Graceful shutdown; open streams get until the timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	return nil
}
