package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
	pkgerrors "github.com/parking-finder/internal/pkg/errors"
)

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository создает репозиторий пользователей
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.Phone,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return domain.ErrUsernameTaken
		}
		r.logger.Error("Failed to create user", zap.String("username", user.Username), zap.Error(err))
		return pkgerrors.ErrDatabaseError
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, username, password_hash, email, phone, created_at FROM users WHERE id = $1`

	var u domain.User
	err := r.db.GetContext(ctx, &u, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user by id", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}

	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash, email, phone, created_at FROM users WHERE username = $1`

	var u domain.User
	err := r.db.GetContext(ctx, &u, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}

	return &u, nil
}
