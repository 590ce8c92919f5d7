package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/services/analytics/internal/config"
	"github.com/example/movie-platform/services/analytics/internal/consumer"
	"github.com/example/movie-platform/services/analytics/internal/handler"
	"github.com/example/movie-platform/services/analytics/internal/posthog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, zap.String("service", cfg.ServiceName))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ph, err := posthog.New(posthog.Options{
		APIKey:        cfg.PostHogAPIKey,
		Host:          cfg.PostHogHost,
		FlushInterval: cfg.FlushInterval,
		BatchSize:     cfg.PostHogBatchSize,
	}, log)
	if err != nil {
		log.Error("posthog init", zap.Error(err))
		run.Exit(1)
	}

	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.ServiceName, Logger: log})
	if err != nil {
		log.Error("nats connect", zap.Error(err))
		run.Exit(1)
	}

	dispatcher := handler.New(ph, log)

	c, err := consumer.New(nc, dispatcher, cfg.NATSBatchSize, cfg.FetchWait, log)
	if err != nil {
		log.Error("consumer init", zap.Error(err))
		run.Exit(1)
	}

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		log.Info("analytics consumer started")
		c.Run(ctx)
		log.Info("analytics consumer stopped")
		return nil
	})

	// Exit skips deferred calls, so flush explicitly.
	nc.Close()
	if err := ph.Close(); err != nil {
		log.Warn("posthog close", zap.Error(err))
	}
	_ = log.Sync()
	run.Exit(code)
}
