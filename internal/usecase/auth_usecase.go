package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
	"github.com/parking-finder/internal/pkg/auth"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/validator"
	"github.com/parking-finder/internal/usecase/dto"
)

// AuthUseCase - регистрация, вход и проверка токенов
type AuthUseCase struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthUseCase - создание нового AuthUseCase
func NewAuthUseCase(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	bcryptCost int,
	logger *zap.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register создаёт пользователя и сразу выдаёт токен
func (uc *AuthUseCase) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password, uc.bcryptCost)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, apperrors.ErrUsernameTaken.WithDetails(map[string]interface{}{
				"username": "A user with that username already exists.",
			})
		}
		return nil, toAppError(err)
	}

	uc.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return uc.issue(user)
}

// Login проверяет пароль и выдаёт токен
func (uc *AuthUseCase) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, toAppError(err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return uc.issue(user)
}

// Authenticate проверяет токен и возвращает пользователя запроса
func (uc *AuthUseCase) Authenticate(raw string) (*auth.Principal, error) {
	principal, err := uc.tokens.Verify(raw)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return principal, nil
}

func (uc *AuthUseCase) issue(user *domain.User) (*dto.TokenResponse, error) {
	token, err := uc.tokens.Issue(user.ID, user.Username)
	if err != nil {
		uc.logger.Error("Failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}
	return &dto.TokenResponse{Token: token}, nil
}
