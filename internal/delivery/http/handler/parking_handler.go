package handler

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/delivery/http/middleware"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
	"github.com/parking-finder/internal/usecase"
	"github.com/parking-finder/internal/usecase/dto"
)

// ParkingHandler - поиск, бронирование и просмотр мест
type ParkingHandler struct {
	parkingUC *usecase.ParkingUseCase
	logger    *zap.Logger
}

// NewParkingHandler - создание нового ParkingHandler
func NewParkingHandler(parkingUC *usecase.ParkingUseCase, logger *zap.Logger) *ParkingHandler {
	return &ParkingHandler{
		parkingUC: parkingUC,
		logger:    logger,
	}
}

// Search godoc
// @Summary Поиск мест в радиусе
// @Description Возвращает места, геометрия которых находится не дальше radius метров от точки. Без latitude или longitude возвращается пустой список.
// @Tags Parking
// @Produce json
// @Param latitude query number false "Широта точки поиска"
// @Param longitude query number false "Долгота точки поиска"
// @Param radius query int false "Радиус в метрах" default(500)
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param Authorization header string false "Bearer {token}"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.ParkingSpotResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/parking/search [get]
func (h *ParkingHandler) Search(c *fiber.Ctx) error {
	req := dto.SearchRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}

	// без обеих координат остальные параметры не разбираются
	if hasQuery(c, "latitude") && hasQuery(c, "longitude") {
		var err error
		if req.Latitude, err = optionalFloat(c, "latitude"); err != nil {
			return utils.SendError(c, err)
		}
		if req.Longitude, err = optionalFloat(c, "longitude"); err != nil {
			return utils.SendError(c, err)
		}
		if req.Radius, err = optionalInt(c, "radius"); err != nil {
			return utils.SendError(c, err)
		}
	}

	result, err := h.parkingUC.Search(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result.Spots, &utils.Meta{
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Reserved godoc
// @Summary Места, забронированные текущим пользователем
// @Tags Parking
// @Produce json
// @Param Authorization header string true "Bearer {token}"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.ParkingSpotResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/parking/reserved [get]
func (h *ParkingHandler) Reserved(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return utils.SendError(c, apperrors.ErrUnauthorized)
	}

	spots, err := h.parkingUC.ListReserved(c.Context(), principal.UserID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, spots, &utils.Meta{Total: len(spots)})
}

// Reserve godoc
// @Summary Бронирование места
// @Description Бронирует свободное место для текущего пользователя. Повторное бронирование возвращает 409.
// @Tags Parking
// @Produce json
// @Param parking_id query int true "ID места"
// @Param user_id query int false "ID пользователя (должен совпадать с текущим)"
// @Param Authorization header string true "Bearer {token}"
// @Success 200 {object} utils.SuccessResponse{data=dto.ParkingSpotResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/parking/reserve [post]
func (h *ParkingHandler) Reserve(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return utils.SendError(c, apperrors.ErrUnauthorized)
	}

	spotID, err := requiredID(c, "parking_id")
	if err != nil {
		return utils.SendError(c, err)
	}

	userID := principal.UserID
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		requested, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, invalidParam("user_id", raw))
		}
		if requested != principal.UserID {
			return utils.SendError(c, apperrors.ErrForbidden.WithMessage("Cannot reserve on behalf of another user"))
		}
	}

	spot, err := h.parkingUC.Reserve(c.Context(), spotID, userID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, spot, nil)
}

// List godoc
// @Summary Список всех мест
// @Tags Parking
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param Authorization header string true "Bearer {token}"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.ParkingSpotResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/parking [get]
func (h *ParkingHandler) List(c *fiber.Ctx) error {
	result, err := h.parkingUC.List(c.Context(), dto.ListRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result.Spots, &utils.Meta{
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// GetByID godoc
// @Summary Место по ID
// @Tags Parking
// @Produce json
// @Param id path int true "ID места"
// @Param Authorization header string true "Bearer {token}"
// @Success 200 {object} utils.SuccessResponse{data=dto.ParkingSpotResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/parking/{id} [get]
func (h *ParkingHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.SendError(c, apperrors.ErrParkingNotFound)
	}

	spot, err := h.parkingUC.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, spot, nil)
}

// ReadOnly отвечает 405 на попытки изменить места через API
func (h *ParkingHandler) ReadOnly(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "GET, HEAD, OPTIONS")
	return utils.SendError(c, apperrors.ErrMethodNotAllowed)
}

func invalidParam(name, value string) error {
	return apperrors.ErrInvalidArgument.WithDetails(map[string]interface{}{
		name: "invalid value " + strconv.Quote(value),
	})
}

// optionalFloat - nil для отсутствующего или пустого параметра
func hasQuery(c *fiber.Ctx, name string) bool {
	return strings.TrimSpace(c.Query(name)) != ""
}

func optionalFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, invalidParam(name, raw)
	}
	return &v, nil
}

func optionalInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(name, raw)
	}
	return &v, nil
}

func requiredID(c *fiber.Ctx, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, apperrors.ErrInvalidArgument.WithDetails(map[string]interface{}{
			name: "This field is required.",
		})
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidParam(name, raw)
	}
	return v, nil
}
