package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/dailyglow/internal/api"
	"github.com/terraincognita07/dailyglow/internal/cache"
	"github.com/terraincognita07/dailyglow/internal/cli"
	"github.com/terraincognita07/dailyglow/internal/config"
	"github.com/terraincognita07/dailyglow/internal/logging"
	"github.com/terraincognita07/dailyglow/internal/notification"
	"github.com/terraincognita07/dailyglow/internal/services"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	backend, err := cli.OpenBackend(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	var registry *prometheus.Registry
	deps := services.SessionDeps{
		Store:               backend.Store,
		Notifier:            buildNotifier(sigCtx, cfg, backend.Store, logger),
		Cache:               buildCache(sigCtx, cfg, logger),
		Logger:              logger,
		Location:            cfg.Location,
		DailyChallengeLimit: cfg.DailyChallengeLimit,
	}
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = services.NewMetrics(registry)
	}
	sessions := services.NewSessionRegistry(deps)

	options := api.Options{
		SecretKey: []byte(cfg.JWTSecret),
		RateLimit: rate.Limit(cfg.RateLimitPerSecond),
		RateBurst: cfg.RateLimitBurst,
		Logger:    logger,
	}
	if registry != nil {
		options.Registerer = registry
		options.Gatherer = registry
	}
	handler, err := api.NewHandler(sessions, options)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Daily Glow",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})
	app.Use(recover.New())
	api.RegisterRoutes(app, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(sigCtx)
	defer cancelLifecycle()
	services.NewMidnightScheduler(cfg.Location, sessions.Rollover, logger).Start(lifecycleCtx)

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("dailyglow listening",
		zap.String("port", cfg.Port),
		zap.String("backend", backend.Kind),
		zap.String("tz", cfg.Location.String()),
		zap.Bool("metrics", registry != nil),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func buildNotifier(ctx context.Context, cfg config.Config, targets notification.PushTargets, logger *zap.Logger) services.MilestoneNotifier {
	client, err := notification.NewMessagingClient(ctx, cfg.FCMServiceAccountJSON, cfg.FCMCredentialsFile)
	if err != nil {
		if !errors.Is(err, notification.ErrNoCredentials) {
			logger.Warn("firebase messaging unavailable, milestones are logged only", zap.Error(err))
		}
		return notification.NewLogNotifier(logger)
	}
	return notification.NewFCMNotifier(targets, client, logger)
}

func buildCache(ctx context.Context, cfg config.Config, logger *zap.Logger) services.DailyChallengeCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryDailyChallengeCache()
	}
	redisCache := cache.NewRedisDailyChallengeCache(cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}))
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable at startup, cache reads will fall through", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return redisCache
}
