package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"webremote/database"
	"webremote/internal/config"
	rpc "webremote/internal/microservices/grpc"
	"webremote/internal/microservices/http-api/models"
	"webremote/internal/microservices/http-api/repository"
	"webremote/internal/microservices/http-api/service"
	"webremote/internal/microservices/websocket"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("server_stopped_gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Health store
	var store service.HealthStore = service.NewMemoryHealthStore()
	if cfg.HealthStore == config.HealthStoreRedis {
		redisStore, err := service.NewRedisHealthStore(cfg.RedisURL, cfg.RedisPassword, cfg.HealthTTL)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		store = redisStore
	}

	// Optional health history
	var history repository.HealthHistoryRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Gorm.AutoMigrate(&models.HealthSnapshot{}); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		history = repository.NewHealthHistoryRepository(db.Gorm)
	}

	healthService := service.NewHealthService(store, history, logger)
	launcher := service.NewProcessLauncher(cfg.SubprocessCommand, cfg.SubprocessDir, logger)

	// Relay core
	registry := websocket.NewRegistry(logger)
	engine := websocket.NewEngine(registry, logger)
	hub := websocket.NewHub(registry, engine, logger)

	// Optional gRPC health endpoint
	var healthServer *rpc.HealthServer
	if cfg.GRPCPort != 0 {
		healthServer = rpc.NewHealthServer(logger)
		healthService.Subscribe(healthServer.SetVehicleStatus)
		if _, err := healthServer.StartGRPCServer(fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.GRPCPort)); err != nil {
			return err
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logger, hub, healthService, launcher)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: router,
	}

	logger.Info("starting_relay_server",
		"http_addr", cfg.HTTPAddr(),
		"grpc_port", cfg.GRPCPort,
		"health_store", cfg.HealthStore,
		"history_enabled", history != nil,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// websocket connections are hijacked, Shutdown does not wait for them
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_incomplete", "error", err)
	}
	registry.CloseAll()
	if healthServer != nil {
		healthServer.GracefulStop()
	}
	return nil
}
