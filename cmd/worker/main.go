package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cloudslate/cloudslate/internal/app"
	"github.com/cloudslate/cloudslate/internal/config"
	"github.com/cloudslate/cloudslate/internal/events"
	"github.com/cloudslate/cloudslate/internal/logging"
	"github.com/cloudslate/cloudslate/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
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

	builder := worker.NewSitemapBuilder(store, cfg.Client.SiteURL, logger)
	if err := builder.Rebuild(ctx); err != nil {
		logger.Warn("initial sitemap build failed", "error", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := events.DeclareSitemapQueue(ch)
	if err != nil {
		logger.Error("failed to declare sitemap queue", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(q.Name, "sitemap-worker", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	logger.Info("sitemap worker started", "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handleDelivery(ctx, logger, builder, d)
		}
	}
}

func handleDelivery(ctx context.Context, logger *slog.Logger, builder *worker.SitemapBuilder, d amqp.Delivery) {
	err := builder.Handle(ctx, d.Body)
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			logger.Error("failed to ack", "error", err)
		}
	case errors.Is(err, worker.ErrInvalidEvent):
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
	default:
		logger.Error("sitemap rebuild failed, requeueing", "error", err)
		_ = d.Nack(false, !d.Redelivered)
	}
}
