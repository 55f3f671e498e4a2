package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-bff/config"
	"storefront-bff/database"
	"storefront-bff/middleware"
	"storefront-bff/routes"
	"storefront-bff/storage"
	"storefront-bff/storeapi"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		logger.Fatal("Error loading .env file", zap.Error(err))
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		logger.Fatal("Environment validation failed", zap.Error(err))
	}
	cfg := config.Load()

	// Guest cart storage
	kv, closeStorage := openStorage(cfg, logger)
	defer closeStorage()

	store := storeapi.NewClient(cfg.StoreAPIURL,
		storeapi.WithTimeout(cfg.UpstreamTimeout),
		storeapi.WithLogger(logger.Named("storeapi")),
	)

	// Setup Gin router
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		origins = []string{cfg.FrontendURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.GuestTokenHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.GuestTokenHeader},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		Store:        store,
		KV:           kv,
		Logger:       logger,
		LoginLimiter: middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// openStorage builds the configured guest cart backend and returns its closer.
func openStorage(cfg config.Config, logger *zap.Logger) (storage.KeyValueStore, func()) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		stop := make(chan struct{})
		go purgeStaleCarts(db, cfg.GuestCartTTL, stop, logger)

		return storage.NewGormStore(db), func() {
			close(stop)
			if err := database.Close(db); err != nil {
				logger.Error("Error closing database connection", zap.Error(err))
				return
			}
			logger.Info("Database connection closed")
		}

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}

		return storage.NewRedisStore(client, "storefront", cfg.GuestCartTTL), func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing redis connection", zap.Error(err))
			}
		}

	default:
		return storage.NewMemoryStore(), func() {}
	}
}

// purgeStaleCarts drops guest state untouched for longer than ttl, hourly.
func purgeStaleCarts(db *gorm.DB, ttl time.Duration, stop <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			removed, err := database.PurgeStale(db, now.Add(-ttl))
			if err != nil {
				logger.Warn("Failed to purge stale guest carts", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Purged stale guest carts", zap.Int64("entries", removed))
			}
		}
	}
}
