package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codefix-ai/maestro/internal/application/engine"
	"github.com/codefix-ai/maestro/internal/application/executor"
	"github.com/codefix-ai/maestro/internal/application/orchestrator"
	"github.com/codefix-ai/maestro/internal/config"
	eventsmemory "github.com/codefix-ai/maestro/pkg/adapters/events/memory"
	eventsredis "github.com/codefix-ai/maestro/pkg/adapters/events/redis"
	"github.com/codefix-ai/maestro/pkg/adapters/llm"
	"github.com/codefix-ai/maestro/pkg/adapters/metrics/prometheus"
	"github.com/codefix-ai/maestro/pkg/adapters/protocol"
	storagememory "github.com/codefix-ai/maestro/pkg/adapters/storage/memory"
	storageredis "github.com/codefix-ai/maestro/pkg/adapters/storage/redis"
	"github.com/codefix-ai/maestro/pkg/adapters/tools"
	"github.com/codefix-ai/maestro/pkg/api/grpc"
	"github.com/codefix-ai/maestro/pkg/api/http"
	"github.com/codefix-ai/maestro/pkg/api/websocket"
	"github.com/codefix-ai/maestro/pkg/ports"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting Maestro",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage_backend", cfg.StorageBackend))

	ctx := context.Background()

	// Initialize storage and events, memory by default and Redis when
	// configured
	var (
		workflowStore ports.WorkflowStore
		historyStore  ports.ExecutionStore
		eventBus      ports.EventBus
		redisClient   *goredis.Client
	)

	switch cfg.StorageBackend {
	case "redis":
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		store := storageredis.NewStore(redisClient, cfg.Redis.ExecutionTTL, logger)
		workflowStore = store
		historyStore = store

		eventBus, err = eventsredis.NewStreamsEventBus(
			redisClient,
			"maestro-api",
			fmt.Sprintf("maestro-%d", os.Getpid()),
			logger,
		)
		if err != nil {
			logger.Fatal("failed to create event bus", zap.Error(err))
		}
	default:
		store := storagememory.NewStore()
		workflowStore = store
		historyStore = store
		eventBus = eventsmemory.NewEventBus()
	}

	metricsCollector := prometheus.NewCollector()

	// Initialize executor dependencies. Without an API key agent nodes
	// fail at dispatch instead of blocking startup.
	var llmClient ports.LLMClient
	if cfg.LLM.APIKey != "" {
		llmClient, err = llm.NewClient(&llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			Metrics:  metricsCollector,
			Logger:   logger,
		})
		if err != nil {
			logger.Fatal("failed to create LLM client", zap.Error(err))
		}
	} else {
		logger.Warn("no LLM API key configured, agent nodes will fail until one is set")
	}

	toolRegistry := tools.NewRegistry(metricsCollector, logger)
	protocolClient := protocol.NewClient(cfg.ProtocolServers, logger)

	dispatcher := executor.NewDispatcher(&executor.Config{
		LLM:                llmClient,
		Tools:              toolRegistry,
		Protocol:           protocolClient,
		DefaultModel:       cfg.LLM.DefaultModel,
		DefaultTemperature: cfg.LLM.DefaultTemperature,
		DefaultMaxTokens:   cfg.LLM.DefaultMaxTokens,
		Logger:             logger,
	})

	// Initialize application components
	validator := orchestrator.NewValidator()

	deps := engine.Deps{
		Dispatcher:       dispatcher,
		MaxIterations:    cfg.Engine.MaxIterations,
		WaitPollInterval: cfg.Engine.WaitPollInterval,
		WaitTimeout:      cfg.Engine.WaitTimeout,
		Logger:           logger,
	}
	if llmClient != nil {
		deps.Group = llm.NewGroupSession(llmClient, cfg.LLM.DefaultModel, cfg.LLM.DefaultMaxTokens)
	}

	tracker := orchestrator.NewTracker(
		workflowStore,
		historyStore,
		eventBus,
		metricsCollector,
		validator,
		deps,
		logger,
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:      cfg.HTTPPort,
		Tracker:   tracker,
		Workflows: workflowStore,
		Logger:    logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(cfg.GRPCPort, logger)
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("Maestro started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	grpcServer.Shutdown()

	if err := tracker.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracker shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("Maestro shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
