package main

// @title Parking Finder API
// @version 1.0.0
// @description Поиск парковочных мест в радиусе от точки и однократное бронирование.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/parking-finder/docs/swagger"
	"github.com/parking-finder/internal/config"
	httpDelivery "github.com/parking-finder/internal/delivery/http"
	"github.com/parking-finder/internal/delivery/http/handler"
	"github.com/parking-finder/internal/domain/repository"
	"github.com/parking-finder/internal/pkg/auth"
	"github.com/parking-finder/internal/pkg/logger"
	"github.com/parking-finder/internal/repository/cache"
	"github.com/parking-finder/internal/repository/memory"
	"github.com/parking-finder/internal/repository/postgres"
	"github.com/parking-finder/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Parking Finder")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("public_search", cfg.Auth.PublicSearch),
	)

	var (
		parkingRepo repository.ParkingRepository
		userRepo    repository.UserRepository
		cacheRepo   repository.CacheRepository
		redisClient *cache.Redis
		closers     []func() error
	)

	// 3. Optional Redis search cache
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		closers = append(closers, redisClient.Close)
		cacheRepo = cache.NewCacheRepository(redisClient)
	}

	// 4. Storage
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		closers = append(closers, db.Close)

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				log.Fatal("Failed to apply migrations", zap.Error(err))
			}
		}

		parkingRepo = postgres.NewParkingRepository(db)
		userRepo = postgres.NewUserRepository(db)
	case config.StorageDriverMemory:
		store := memory.NewStore(log)
		parkingRepo = memory.NewParkingRepository(store)
		userRepo = memory.NewUserRepository(store)

		if cfg.Import.SeedFile != "" {
			if err := seed(cfg, parkingRepo, cacheRepo, log); err != nil {
				log.Fatal("Failed to seed memory storage", zap.Error(err))
			}
		}
	}

	log.Info("Repositories initialized")

	// 5. Initialize Use Cases
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	authUC := usecase.NewAuthUseCase(userRepo, tokens, cfg.Auth.BcryptCost, log)
	parkingUC := usecase.NewParkingUseCase(parkingRepo, userRepo, cacheRepo, log, usecase.ParkingConfig{
		DefaultRadius: cfg.Search.DefaultRadius,
		PageSize:      cfg.Search.PageSize,
		MaxPageSize:   cfg.Search.MaxPageSize,
		CacheTTL:      cfg.Cache.SearchCacheTTL,
	})

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	checks := map[string]handler.HealthChecker{"storage": parkingUC}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	server := httpDelivery.NewServer(
		cfg,
		log,
		authUC,
		handler.NewAuthHandler(authUC, log),
		handler.NewParkingHandler(parkingUC, log),
		handler.NewHealthHandler(checks, log),
	)

	// 7. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("Failed to close connection", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}

// seed загружает датасет в память; старые наборы ID в Redis сбрасываются
func seed(cfg *config.Config, parkingRepo repository.ParkingRepository, cacheRepo repository.CacheRepository, log *zap.Logger) error {
	f, err := os.Open(cfg.Import.SeedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := usecase.NewImportUseCase(parkingRepo, cacheRepo, cfg.Import.TagProperty, log).Load(context.Background(), f)
	if err != nil {
		return err
	}
	log.Info("Memory storage seeded", zap.String("file", cfg.Import.SeedFile), zap.Int("count", res.Count))
	return nil
}
