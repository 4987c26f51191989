package postgres

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/parking-finder/migrations"
)

// Migrate применяет встроенные миграции goose
func Migrate(db *DB) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.Up(db.DB.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db.DB.DB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	db.logger.Info("Database migrations applied", zap.Int64("version", version))
	return nil
}
