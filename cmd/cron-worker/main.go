package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/volunteerlinks-backend/internal/cron"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/instance"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/metrics"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/migrate"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := redis.NewLock(redisClient, redisClient.LockKey(serviceKind, env), cfg.Cron.LockTTL)
	if err != nil {
		return fmt.Errorf("create cron lock: %w", err)
	}

	jobs, err := buildJobs(cfg, logg, dbClient)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return fmt.Errorf("create cron service: %w", err)
	}

	go func() {
		if err := metrics.Serve(ctx, ":"+cfg.App.Port, reg); err != nil {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	outboxRepo := outbox.NewRepository(dbClient.DB())

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("create outbox retention job: %w", err)
	}
	backlog, err := cron.NewOutboxBacklogJob(cron.OutboxBacklogJobParams{
		Logger:     logg,
		Repository: outboxRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("create outbox backlog job: %w", err)
	}
	deadLetters, err := cron.NewOutboxDLQJob(cron.OutboxDLQJobParams{
		Logger:     logg,
		Repository: outbox.NewDLQRepository(dbClient.DB()),
		Window:     cfg.Cron.DLQWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("create outbox dlq job: %w", err)
	}
	return cron.NewRegistry(retention, backlog, deadLetters), nil
}
