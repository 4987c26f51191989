package repository

import (
	"context"

	"github.com/parking-finder/internal/domain"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// Create сохраняет пользователя и заполняет ID/CreatedAt
	// (domain.ErrUsernameTaken при дубликате)
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername возвращает пользователя по имени
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
