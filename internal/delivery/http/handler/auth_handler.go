package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
	"github.com/parking-finder/internal/usecase"
	"github.com/parking-finder/internal/usecase/dto"
)

// AuthHandler - регистрация и вход
type AuthHandler struct {
	authUC *usecase.AuthUseCase
	logger *zap.Logger
}

// NewAuthHandler - создание нового AuthHandler
func NewAuthHandler(authUC *usecase.AuthUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authUC: authUC,
		logger: logger,
	}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя и возвращает токен доступа
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные пользователя"
// @Success 201 {object} utils.SuccessResponse{data=dto.TokenResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /api/user [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrValidation.WithMessage("Invalid request body"))
	}

	result, err := h.authUC.Register(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendCreated(c, result)
}

// Login godoc
// @Summary Получение токена
// @Description Проверяет имя и пароль и возвращает токен доступа
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Имя и пароль"
// @Success 200 {object} utils.SuccessResponse{data=dto.TokenResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrValidation.WithMessage("Invalid request body"))
	}

	result, err := h.authUC.Login(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
