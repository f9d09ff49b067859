package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	routes "restaurant-app/internal/app/http"
	"restaurant-app/internal/infra/ids"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/mail"
	"restaurant-app/internal/infra/realtime"
	"restaurant-app/internal/infra/telemetry"
	"restaurant-app/internal/jobs"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()
	config.LoadEnv()

	// telemetry first; the production logger ships through its provider
	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       config.OTEL_ENDPOINT,
		Headers:        config.OTEL_HEADERS,
		ServiceName:    config.SERVICE_NAME,
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(logger.Options{
		Production:  config.IsProduction(),
		OTelEnabled: tel != nil,
		ServiceName: config.SERVICE_NAME,
	})

	if err := ids.Init(1); err != nil {
		slog.ErrorContext(ctx, "Failed to initialize id generator", logger.ErrAttr(err))
		os.Exit(1)
	}
	if config.HASHID_SALT == "" && config.IsProduction() {
		slog.WarnContext(ctx, "HASHID_SALT is empty, order tracking codes are guessable")
	}
	ids.SetDefaultHasher(ids.NewHasher(config.HASHID_SALT))

	if config.SMTP_URL != "" {
		mail.SetDefault(mail.NewSMTPSender(config.SMTP_URL, config.SMTP_USER, config.SMTP_PASSWORD))
	} else {
		slog.WarnContext(ctx, "SMTP_URL not set, emails are only logged")
	}

	var redisClient *redis.Client
	if config.REDIS_URL != "" {
		opts, err := redis.ParseURL(config.REDIS_URL)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to parse redis url", logger.ErrAttr(err))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "Failed to connect to redis", logger.ErrAttr(err))
			os.Exit(1)
		}
		realtime.SetDefault(realtime.NewRedisBroker(redisClient))
		slog.InfoContext(ctx, "Realtime events go through redis")
	}

	database.InitDB()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           routes.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// no WriteTimeout: the kitchen stream is long lived
	}

	jobsCtx, stopJobs := context.WithCancel(ctx)
	cleaner := &jobs.Cleaner{DB: database.DB, MinInterval: 5 * time.Minute, MaxInterval: 6 * time.Hour}
	go cleaner.Run(jobsCtx)

	go func() {
		slog.InfoContext(ctx, "HTTP server starting", "port", config.PORT, "env", config.ENV)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "HTTP server error", logger.ErrAttr(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "Shutting down...")
	stopJobs()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "HTTP server shutdown error", logger.ErrAttr(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if tel != nil {
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "Otel shutdown error", logger.ErrAttr(err))
		}
	}

	slog.InfoContext(shutdownCtx, "Shutdown complete")
}
