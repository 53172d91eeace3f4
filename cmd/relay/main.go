package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/adapters/messaging"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/outbox"
	"github.com/AchilleasB/sangria/donor-service/internal/config"
	"github.com/AchilleasB/sangria/donor-service/internal/logger"
)

func main() {
	cfg := config.LoadRelayConfig()
	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "outbox-relay")
	defer func() { _ = log.Sync() }()

	log.Info("starting outbox relay service")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.DonorQueueName, log)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer broker.Close()
	log.Info("connected to rabbitmq", zap.String("queue", cfg.DonorQueueName))

	relay := outbox.NewRelay(db, cfg.DatabaseURL, broker, log)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", probe(relay.IsHealthy))
	healthMux.HandleFunc("/health/live", probe(relay.IsHealthy))
	healthMux.HandleFunc("/health/ready", probe(relay.IsReady))

	healthServer := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting health check server", zap.String("addr", cfg.HealthAddr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server error", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture fatal errors from relay worker
	errChan := make(chan error, 1)

	go func() {
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal, initiating shutdown", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("fatal error, shutting down", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down health server", zap.Error(err))
	}

	log.Info("shutdown complete")
}

func probe(check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "UP"
		httpStatus := http.StatusOK
		if !check() {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": "outbox-relay",
		})
	}
}
