package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/handlers"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/inmem"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"github.com/SAP-F-2025/learning-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, stats will not be cached", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repo, err := initRepository(cfg, redisClient, logger)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize event publisher
	publisher, err := initPublisher(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	// Initialize services
	svcConfig := services.DefaultServiceManagerConfig(cfg.JWTSecret)
	svcConfig.LogLevel = cfg.LogLevel
	svcConfig.Stats.CacheTTL = cfg.StatsCacheTTL
	svcConfig.Auth.TokenTTL = cfg.JWTExpiration

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Cache:     cache.NewCacheManager(redisClient),
		Publisher: publisher,
		Logger:    slogLogger,
		Validator: validator.New(),
	}, svcConfig)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Locally issued tokens are always accepted, Casdoor tokens on top when enabled
	authenticator := handlers.ChainAuthenticator{serviceManager.User()}
	if cfg.AuthProvider == config.AuthProviderCasdoor {
		authenticator = append(handlers.ChainAuthenticator{
			handlers.NewCasdoorAuthenticator(cfg.Casdoor, serviceManager.User()),
		}, authenticator...)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, authenticator, logger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.AllowedOrigins...)
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "storage", cfg.Storage, "auth_provider", cfg.AuthProvider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Closes the publisher and the repository (database and Redis for postgres storage)
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if cfg.Storage == config.StorageMemory && redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

func initRepository(cfg *config.Config, redisClient *redis.Client, logger utils.Logger) (repositories.Repository, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return inmem.NewMemoryRepository(), nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		AutoMigrate: cfg.AutoMigrate,
	})
	if err := repoManager.Initialize(); err != nil {
		return nil, err
	}

	return repoManager.GetRepository(), nil
}

func initPublisher(cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopicPrefix, logger)
	}

	// No broker configured: events stay in process
	publisher, _ := events.NewGoChannelPublisher(cfg.EventsTopicPrefix, logger)
	return publisher, nil
}
