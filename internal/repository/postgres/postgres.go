package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/config"
)

const (
	pingTimeout  = 5 * time.Second
	retryBackoff = time.Second
)

// DB - пул соединений sqlx поверх драйвера pgx
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// New открывает пул и ждёт, пока PostgreSQL начнёт отвечать.
// Делается cfg.ConnectAttempts попыток с паузой retryBackoff.
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	conn, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	attempts := max(cfg.ConnectAttempts, 1)
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = conn.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if attempt >= attempts {
			_ = conn.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}
		logger.Warn("PostgreSQL not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		time.Sleep(retryBackoff)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
	)

	return &DB{DB: conn, logger: logger}, nil
}

func (db *DB) Close() error {
	db.logger.Info("Closing PostgreSQL connection")
	return db.DB.Close()
}

// Health проверяет соединение и наличие PostGIS: без него поиск по радиусу не работает
func (db *DB) Health(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var version string
	if err := db.QueryRowContext(ctx, `SELECT postgis_lib_version()`).Scan(&version); err != nil {
		return fmt.Errorf("postgis unavailable: %w", err)
	}
	return nil
}

// NewDBForTest оборачивает готовое соединение (sqlmock, тестовая БД)
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
	}
}
