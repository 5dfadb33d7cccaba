package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"stockpulse/internal/adapters/config"
	"stockpulse/internal/bootstrap"
	"stockpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	container, err := bootstrap.New(cfg)
	if err != nil {
		panic("failed to bootstrap: " + err.Error())
	}
	defer container.Close()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- container.Server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.Server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}

	log.Info("Goodbye")
}
