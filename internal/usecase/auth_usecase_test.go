package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/pkg/auth"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/usecase"
	"github.com/parking-finder/internal/usecase/dto"
)

const testBcryptCost = 4

func newAuthUseCase(users *MockUserRepository) (*usecase.AuthUseCase, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", "parking-finder", time.Hour)
	return usecase.NewAuthUseCase(users, tokens, testBcryptCost, zap.NewNop()), tokens
}

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues a token for the new user", func(t *testing.T) {
		users := &MockUserRepository{}
		uc, tokens := newAuthUseCase(users)

		users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" && u.Phone == "555" && auth.VerifyPassword(u.PasswordHash, "s3cret")
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 42
		}).Return(nil)

		resp, err := uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "s3cret", Phone: "555"})
		require.NoError(t, err)

		principal, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), principal.UserID)
		assert.Equal(t, "alice", principal.Username)
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		users := &MockUserRepository{}
		uc, _ := newAuthUseCase(users)

		_, err := uc.Register(ctx, dto.RegisterRequest{Username: "bad name!", Email: "not-an-email"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Contains(t, appErr.Details, "username")
		assert.Contains(t, appErr.Details, "password")
		assert.Contains(t, appErr.Details, "email")
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := &MockUserRepository{}
		uc, _ := newAuthUseCase(users)
		users.On("Create", ctx, mock.Anything).Return(domain.ErrUsernameTaken)

		_, err := uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "pw"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)
		assert.Contains(t, appErr.Details, "username")
	})
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("s3cret", testBcryptCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 3, Username: "bob", PasswordHash: hash}

	users := &MockUserRepository{}
	uc, tokens := newAuthUseCase(users)
	users.On("GetByUsername", ctx, "bob").Return(stored, nil)
	users.On("GetByUsername", ctx, "ghost").Return(nil, domain.ErrNotFound)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "s3cret"})
	require.NoError(t, err)
	principal, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), principal.UserID)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bob"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	uc, tokens := newAuthUseCase(&MockUserRepository{})

	raw, err := tokens.Issue(9, "carol")
	require.NoError(t, err)

	principal, err := uc.Authenticate(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(9), principal.UserID)

	_, err = uc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
