package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudslate/cloudslate/internal/app"
	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/handlers"
	"github.com/cloudslate/cloudslate/internal/logging"
	"github.com/cloudslate/cloudslate/internal/posts"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.AdminToken == "" {
		logger.Error("ADMIN_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open KV store", "backend", cfg.KVBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	publisher, closePublisher := app.OpenPublisher(cfg, logger)
	defer closePublisher()

	router := handlers.NewRouter(handlers.RouterDeps{
		Service:    posts.NewService(store, publisher, logger),
		AdminToken: cfg.AdminToken,
		Logger:     logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storage API started", "port", cfg.Port, "backend", cfg.KVBackend)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
