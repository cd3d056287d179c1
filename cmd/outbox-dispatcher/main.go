package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/instance"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/metrics"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/migrate"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/registry"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/redis"
)

const serviceKind = "outbox-dispatcher"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	guard, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()
	engagementMetrics := metrics.NewEngagementMetrics(reg)

	outboxRepo := outbox.NewRepository(dbClient.DB())
	fanout, err := notifications.NewFanout(notifications.FanoutParams{
		Repository: notifications.NewRepository(dbClient.DB()),
		Logger:     logg,
		Metrics:    engagementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification fanout", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Repository:    outboxRepo,
		Registry:      registry.NewEventRegistry(),
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Fanout:        fanout,
		Idempotency:   guard,
		Metrics:       engagementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceKind,
		"instance":    instance.GetID(),
	})

	go func() {
		if err := metrics.Serve(ctx, ":"+cfg.App.Port, reg); err != nil {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "starting outbox dispatcher")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox dispatcher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox dispatcher shutting down gracefully")
}
