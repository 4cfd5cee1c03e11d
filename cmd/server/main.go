package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/blog-platform/configs"
	"github.com/avatarctic/blog-platform/internal/application/services"
	"github.com/avatarctic/blog-platform/internal/core/ports"
	"github.com/avatarctic/blog-platform/internal/infrastructure/db"
	"github.com/avatarctic/blog-platform/internal/infrastructure/health"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver"
	"github.com/avatarctic/blog-platform/internal/infrastructure/redis"
	"github.com/avatarctic/blog-platform/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting blog platform...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Server.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// The cache is optional at runtime: start without it and let the store fail open.
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable at startup; serving uncached until it recovers")
		redisClient = redis.NewLazyRedisClient(&cfg.Redis)
	} else {
		logger.Info("Connected to Redis successfully")
	}
	defer redisClient.Close()

	cacheStore := redis.NewStore(redisClient, redis.StoreOptionsFrom(&cfg.Redis, &cfg.Breaker), logger)
	articleRepo := repositories.NewArticleRepository(database, logger)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	popularityService := services.NewPopularityService(cacheStore, articleRepo, cfg.Content.PopularLimit, logger)
	statsService := services.NewStatsService(cacheStore, popularityService, logger)
	relatedService := services.NewRelatedService(cacheStore, articleRepo, &services.RelatedConfig{
		Limit:         cfg.Content.RelatedLimit,
		MinSimilarity: cfg.Content.MinSimilarity,
		TTL:           cfg.Content.RelatedTTL,
	}, logger)
	invalidationService := services.NewInvalidationService(cacheStore, articleRepo, popularityService, logger)

	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		RequestsPerWindow: cfg.RateLimit.LikesPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}, logger)
	editorTokens := services.NewEditorTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewCacheHealthChecker(cacheStore)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
		VisitorSalt:  cfg.Visitor.HashSalt,
	}

	deps := httpserver.ServerDeps{
		StatsService:        statsService,
		PopularityService:   popularityService,
		RelatedService:      relatedService,
		InvalidationService: invalidationService,
		RateLimiterService:  rateLimiterService,
		EditorTokens:        editorTokens,
		Articles:            articleRepo,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
