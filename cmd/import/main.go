// Command import loads a GeoJSON FeatureCollection of parking areas into
// PostgreSQL. Feature i becomes parking spot i.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/parking-finder/internal/config"
	"github.com/parking-finder/internal/domain/repository"
	"github.com/parking-finder/internal/pkg/logger"
	"github.com/parking-finder/internal/repository/cache"
	"github.com/parking-finder/internal/repository/postgres"
	"github.com/parking-finder/internal/usecase"
)

type options struct {
	file    string
	tag     string
	migrate bool
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "parking-areas.geojson", "path to the GeoJSON dataset")
	flag.StringVar(&opts.tag, "tag", "", "feature property holding the spot tag (overrides IMPORT_TAG_PROPERTY)")
	flag.BoolVar(&opts.migrate, "migrate", true, "apply database migrations before import")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	if err := run(cfg, opts, log); err != nil {
		log.Error("Import failed", zap.String("file", opts.file), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run держит все ресурсы на defer, поэтому выход с ошибкой идёт только из main
func run(cfg *config.Config, opts options, log *zap.Logger) error {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return errors.New("import requires STORAGE_DRIVER=postgres")
	}

	tagProperty := cfg.Import.TagProperty
	if opts.tag != "" {
		tagProperty = opts.tag
	}

	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	if opts.migrate {
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	// результаты поиска в Redis устаревают после импорта
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		cacheRepo = cache.NewCacheRepository(redisClient)
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	importUC := usecase.NewImportUseCase(postgres.NewParkingRepository(db), cacheRepo, tagProperty, log)
	res, err := importUC.Load(ctx, f)
	if err != nil {
		return err
	}

	log.Info("Import completed",
		zap.String("file", opts.file),
		zap.String("tag_property", tagProperty),
		zap.Int("count", res.Count),
	)
	return nil
}
