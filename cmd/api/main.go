package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/adapters/cache"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/export"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/handler"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/middleware"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/repository"
	"github.com/AchilleasB/sangria/donor-service/internal/config"
	"github.com/AchilleasB/sangria/donor-service/internal/core/services"
	"github.com/AchilleasB/sangria/donor-service/internal/logger"
	"github.com/AchilleasB/sangria/donor-service/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "donor-service")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to prepare schema", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	log.Info("connected to redis", zap.String("addr", cfg.RedisAddress))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	blacklist := cache.NewRedisTokenBlacklist(redisClient, log)
	authService := services.NewAuthService(repo, blacklist, cfg.JWTPrivateKey, log)
	donorService := services.NewDonorService(repo, export.NewSpreadsheetExporter(), m, log)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService, log),
		Donors:         handler.NewDonorHandler(donorService, log),
		Health:         handler.NewHealthHandler(db, redisClient, log),
		AuthMiddleware: middleware.NewAuthMiddleware(cfg.JWTPublicKey, blacklist, log),
		Gatherer:       registry,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
