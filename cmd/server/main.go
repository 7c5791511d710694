package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/pequenospassos/habit-api/internal/config"
	"github.com/pequenospassos/habit-api/internal/events"
	"github.com/pequenospassos/habit-api/internal/gamification"
	"github.com/pequenospassos/habit-api/internal/handlers"
	"github.com/pequenospassos/habit-api/internal/logger"
	"github.com/pequenospassos/habit-api/internal/middleware"
	"github.com/pequenospassos/habit-api/internal/pdca"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/services/ai"
	"github.com/pequenospassos/habit-api/internal/storage"
	"github.com/pequenospassos/habit-api/internal/store"
	"github.com/pequenospassos/habit-api/internal/telemetry"
	"github.com/pequenospassos/habit-api/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var otelActive bool
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "habit-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				otelActive = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Open the storage backend
	backend, redisBackend, err := openBackend(cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_open_storage_backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zapLogger.Warn("failed_to_close_storage_backend", zap.Error(err))
		}
	}()
	zapLogger.Info("storage_backend_ready", zap.String("backend", cfg.StorageBackend))

	// Connect to RabbitMQ for reminder jobs (required)
	// Retry connection with exponential backoff to handle RabbitMQ startup delays
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue queue.JobQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, lastErr = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if lastErr == nil {
			zapLogger.Info("connected_to_rabbitmq")
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	if lastErr != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	// Core services
	storageService := storage.NewService(backend, zapLogger)
	bus := events.NewBus()
	engine := gamification.NewEngine(storageService, bus, zapLogger)
	taskStore := store.NewTaskStore(storageService, bus, store.ContextConfirmer{}, zapLogger)

	if profile := storageService.CurrentProfile(); profile != "" {
		taskStore.Load(context.Background())
		zapLogger.Info("profile_restored", zap.String("profile", profile))
	}

	// Life-area pages, indexed by category name for task toggling and by
	// page key for the HTTP surface
	pagesByCategory := make(map[string]*pdca.PageHandler, len(pdca.Categories))
	pagesByKey := make(map[string]*pdca.PageHandler, len(pdca.Categories))
	for _, category := range pdca.Categories {
		page := pdca.NewPageHandler(category, pdca.PageIDFor(category), taskStore, engine, bus, nil, zapLogger)
		page.Setup()
		pagesByCategory[category] = page
		pagesByKey[page.PageID()] = page
	}

	// AI provider is optional; reflection insight endpoints answer 503
	// without it
	var aiProvider ai.Provider
	if cfg.OpenAIKey != "" {
		aiProvider = ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
		zapLogger.Info("ai_provider_initialized", zap.String("model", cfg.AIModel))
	} else {
		zapLogger.Warn("ai_provider_not_configured_ai_features_disabled")
	}

	// Handlers
	profileHandler := handlers.NewProfileHandler(storageService, taskStore, zapLogger)
	taskHandler := handlers.NewTaskHandler(taskStore, pagesByCategory, zapLogger)
	categoryHandler := handlers.NewCategoryHandler(taskStore, zapLogger)
	gamificationHandler := handlers.NewGamificationHandler(engine, zapLogger)
	reflectionHandler := handlers.NewReflectionHandler(taskStore, aiProvider, zapLogger)
	plannerHandler := handlers.NewPlannerHandler(taskStore, zapLogger)
	uiHandler := handlers.NewUIHandler(storageService, zapLogger)
	pageHandler := handlers.NewPageHandler(pagesByKey, zapLogger)
	healthChecker := handlers.NewHealthChecker(backend)

	// Router and middleware (gorilla/mux runs them in registration order)
	r := mux.NewRouter()
	if otelActive {
		r.Use(otelmux.Middleware("habit-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Rate limiting shares the redis connection with the storage backend;
	// the postgres backend runs without it
	var rateLimitMW func(http.Handler) http.Handler
	if redisBackend != nil {
		rateLimitMW, err = middleware.RateLimit(redisBackend.Client(), cfg.RateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
	} else {
		zapLogger.Warn("rate_limiting_disabled_no_redis")
	}

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler).Methods("GET")

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	if rateLimitMW != nil {
		apiRouter.Use(rateLimitMW)
	}

	profileHandler.RegisterRoutes(apiRouter.PathPrefix("/profiles").Subrouter())
	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())
	categoryHandler.RegisterRoutes(apiRouter.PathPrefix("/categories").Subrouter())
	gamificationHandler.RegisterRoutes(apiRouter.PathPrefix("/gamification").Subrouter())
	reflectionHandler.RegisterRoutes(apiRouter.PathPrefix("/reflections").Subrouter())
	plannerHandler.RegisterRoutes(apiRouter.PathPrefix("/planner").Subrouter())
	uiHandler.RegisterRoutes(apiRouter.PathPrefix("/ui").Subrouter())
	pageHandler.RegisterRoutes(apiRouter.PathPrefix("/pages").Subrouter())

	// Preflight requests get a bare 204; the CORS middleware has already
	// set the headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// The reminder scheduler runs on the enqueue side, next to the live
	// task data; the worker binary only consumes
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	scheduler := workers.NewReminderScheduler(storageService, jobQueue, zapLogger)
	go func() {
		if err := scheduler.Start(schedCtx); err != nil && err != context.Canceled {
			zapLogger.Error("reminder_scheduler_stopped_with_error", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	schedCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// openBackend opens the configured storage backend. The redis backend is
// returned separately so the rate limiter can share its client.
func openBackend(cfg *config.Config) (storage.Backend, *storage.RedisBackend, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		backend, err := storage.NewPostgresBackend(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return backend, nil, nil
	default:
		backend, err := storage.NewRedisBackend(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	}
}
