package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/config"
	"github.com/pequenospassos/habit-api/internal/logger"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/storage"
	"github.com/pequenospassos/habit-api/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("storage_backend", cfg.StorageBackend),
	)

	var backend storage.Backend
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		backend, err = storage.NewPostgresBackend(cfg.DatabaseURL)
	default:
		backend, err = storage.NewRedisBackend(cfg.RedisURL)
	}
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage_backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage_backend", zap.Error(err))
		}
	}()
	zapLogger.Info("storage_backend_ready", zap.String("backend", cfg.StorageBackend))

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	// The worker reads task data through per-profile views; it never
	// touches the interactive profile selection
	storageService := storage.NewService(backend, zapLogger)
	processor := workers.NewReminderProcessor(storageService, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- processor.Run(ctx, jobQueue, cfg.RabbitMQPrefetch)
	}()

	zapLogger.Info("worker_started")

	select {
	case sig := <-sigChan:
		zapLogger.Info("worker_shutting_down", zap.String("signal", sig.String()))
		cancel()
		<-done
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Fatal("worker_stopped_with_error", zap.Error(err))
		}
	}

	zapLogger.Info("worker_exited")
}
