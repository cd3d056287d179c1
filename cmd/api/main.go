package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/volunteerlinks-backend/api/routes"
	"github.com/angelmondragon/volunteerlinks-backend/internal/activities"
	"github.com/angelmondragon/volunteerlinks-backend/internal/auth"
	"github.com/angelmondragon/volunteerlinks-backend/internal/chat"
	"github.com/angelmondragon/volunteerlinks-backend/internal/engagements"
	"github.com/angelmondragon/volunteerlinks-backend/internal/genre"
	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/internal/reviews"
	"github.com/angelmondragon/volunteerlinks-backend/internal/users"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/metrics"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/migrate"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	reg := metrics.NewRegistry()
	engagementMetrics := metrics.NewEngagementMetrics(reg)

	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	directory, err := users.NewDirectory(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create user directory", err)
		os.Exit(1)
	}

	activityService, err := activities.NewService(activities.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	notificationRepo := notifications.NewRepository(dbClient.DB())
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	fanout, err := notifications.NewFanout(notifications.FanoutParams{
		Repository: notificationRepo,
		Outbox:     outboxService,
		Logger:     logg,
		Metrics:    engagementMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification fanout", err)
		os.Exit(1)
	}

	locker, err := redis.NewKeyedLocker(redisClient, "engagement", cfg.Engagement.DecisionLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement locker", err)
		os.Exit(1)
	}

	var predictor engagements.GenrePredictor
	if cfg.Genre.Enabled() {
		client, err := genre.NewClient(cfg.Genre.ClassifierURL, genre.WithTimeout(cfg.Genre.Timeout))
		if err != nil {
			logg.Error(context.Background(), "failed to create genre client", err)
			os.Exit(1)
		}
		predictor = client
	}

	engagementService, err := engagements.NewService(engagements.ServiceParams{
		Repository:   engagements.NewRepository(dbClient.DB()),
		TxRunner:     dbClient,
		Outbox:       outboxService,
		Notifier:     fanout,
		Catalog:      activityService,
		Identities:   directory,
		Genre:        predictor,
		Locker:       locker,
		Metrics:      engagementMetrics,
		Logger:       logg,
		InlineFanout: cfg.Engagement.InlineFanout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement service", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.NewRepository(dbClient.DB()), activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	profileService, err := users.NewProfileService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      id,
		"inline_fanout": cfg.Engagement.InlineFanout,
		"genre_enabled": cfg.Genre.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			DB:            dbClient,
			Redis:         redisClient,
			Metrics:       reg,
			Auth:          authService,
			Activities:    activityService,
			Engagements:   engagementService,
			Notifications: notificationService,
			Chat:          chatService,
			Reviews:       reviewService,
			Profiles:      profileService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
