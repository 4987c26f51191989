package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/parking-finder/internal/domain/repository"
	"github.com/parking-finder/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewParkingRepositoryForTest creates a parking repository with test database and logger
func NewParkingRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ParkingRepository {
	return postgres.NewParkingRepository(postgres.NewDBForTest(db, logger))
}

// NewUserRepositoryForTest creates a user repository with test database and logger
func NewUserRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.UserRepository {
	return postgres.NewUserRepository(postgres.NewDBForTest(db, logger))
}
