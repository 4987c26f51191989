package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/repository/postgres"
)

// ApplyMigrations applies the embedded goose migrations to the test database
func ApplyMigrations(db *sqlx.DB, logger *zap.Logger) error {
	return postgres.Migrate(postgres.NewDBForTest(db, logger))
}
