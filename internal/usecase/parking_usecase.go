package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
	"github.com/parking-finder/internal/usecase/dto"
)

// ParkingConfig - параметры поиска и пагинации
type ParkingConfig struct {
	DefaultRadius int
	PageSize      int
	MaxPageSize   int
	CacheTTL      time.Duration
}

// ParkingUseCase - поиск, бронирование и просмотр парковочных мест
type ParkingUseCase struct {
	parkingRepo repository.ParkingRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository // nil если кеш выключен
	logger      *zap.Logger
	cfg         ParkingConfig
}

// NewParkingUseCase - создание нового ParkingUseCase
func NewParkingUseCase(
	parkingRepo repository.ParkingRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cfg ParkingConfig,
) *ParkingUseCase {
	return &ParkingUseCase{
		parkingRepo: parkingRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
		cfg:         cfg,
	}
}

// searchCachePrefix - общий префикс ключей поиска, сбрасывается импортом
const searchCachePrefix = "parking:search:"

// searchCacheKey - ключ набора ID для (lat, lon, radius).
// Координаты округляются до 1e-6 градуса (~0.1 м).
func searchCacheKey(lat, lon float64, radius int) string {
	return fmt.Sprintf("%s%.6f:%.6f:%d", searchCachePrefix, lat, lon, radius)
}

func (uc *ParkingUseCase) page(page, limit int) domain.PaginationParams {
	return domain.NewPaginationParams(page, limit, uc.cfg.PageSize, uc.cfg.MaxPageSize)
}

// Search - места в радиусе от точки, по возрастанию ID.
// Без широты или долготы возвращается пустой результат.
func (uc *ParkingUseCase) Search(ctx context.Context, req dto.SearchRequest) (*dto.ParkingListResponse, error) {
	page := uc.page(req.Page, req.Limit)
	empty := &dto.ParkingListResponse{
		Spots: []dto.ParkingSpotResponse{},
		Page:  page.Page,
		Limit: page.Limit,
	}

	if req.Latitude == nil || req.Longitude == nil {
		return empty, nil
	}

	lat, lon := *req.Latitude, *req.Longitude
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"latitude":  lat,
			"longitude": lon,
		})
	}

	radius := uc.cfg.DefaultRadius
	if req.Radius != nil {
		radius = *req.Radius
	}
	if !utils.ValidateRadius(radius) {
		return nil, apperrors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"radius": radius,
		})
	}

	ids, err := uc.matchingIDs(ctx, domain.Point{Lat: lat, Lon: lon}, radius)
	if err != nil {
		return nil, err
	}

	empty.Total = len(ids)
	start := page.Offset()
	if start >= len(ids) {
		return empty, nil
	}
	end := start + page.Limit
	if end > len(ids) {
		end = len(ids)
	}

	spots, err := uc.parkingRepo.GetByIDs(ctx, ids[start:end])
	if err != nil {
		uc.logger.Error("Failed to load parking spots", zap.Error(err))
		return nil, toAppError(err)
	}

	empty.Spots = dto.ConvertParkingSpots(spots)
	return empty, nil
}

// matchingIDs возвращает ID мест в радиусе, используя кеш если он есть.
// Ошибки кеша не прерывают поиск.
func (uc *ParkingUseCase) matchingIDs(ctx context.Context, point domain.Point, radius int) ([]int64, error) {
	key := searchCacheKey(point.Lat, point.Lon, radius)

	if uc.cacheRepo != nil {
		ids, hit, err := uc.cacheRepo.GetSpotIDs(ctx, key)
		if err != nil {
			uc.logger.Warn("Search cache unavailable", zap.String("key", key), zap.Error(err))
		} else if hit {
			return ids, nil
		}
	}

	ids, err := uc.parkingRepo.FindWithinRadius(ctx, point, radius)
	if err != nil {
		uc.logger.Error("Failed to search parking spots",
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Int("radius", radius),
			zap.Error(err),
		)
		return nil, toAppError(err)
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetSpotIDs(ctx, key, ids, uc.cfg.CacheTTL); err != nil {
			uc.logger.Warn("Failed to cache search result", zap.String("key", key), zap.Error(err))
		}
	}

	return ids, nil
}

// Reserve - однократное бронирование свободного места пользователем
func (uc *ParkingUseCase) Reserve(ctx context.Context, spotID, userID int64) (*dto.ParkingSpotResponse, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, toAppError(err)
	}

	spot, err := uc.parkingRepo.Reserve(ctx, spotID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperrors.ErrParkingNotFound
		case errors.Is(err, domain.ErrAlreadyReserved):
			uc.logger.Info("Reservation conflict",
				zap.Int64("spot_id", spotID),
				zap.Int64("user_id", userID),
			)
			return nil, apperrors.ErrAlreadyReserved
		default:
			return nil, toAppError(err)
		}
	}

	uc.logger.Info("Parking spot reserved",
		zap.Int64("spot_id", spotID),
		zap.Int64("user_id", userID),
	)

	resp := dto.ConvertParkingSpot(spot)
	return &resp, nil
}

// ListReserved - места, забронированные пользователем
func (uc *ParkingUseCase) ListReserved(ctx context.Context, userID int64) ([]dto.ParkingSpotResponse, error) {
	spots, err := uc.parkingRepo.ListReservedBy(ctx, userID)
	if err != nil {
		return nil, toAppError(err)
	}
	return dto.ConvertParkingSpots(spots), nil
}

// List - страница всех мест
func (uc *ParkingUseCase) List(ctx context.Context, req dto.ListRequest) (*dto.ParkingListResponse, error) {
	page := uc.page(req.Page, req.Limit)

	spots, total, err := uc.parkingRepo.List(ctx, page)
	if err != nil {
		return nil, toAppError(err)
	}

	return &dto.ParkingListResponse{
		Spots: dto.ConvertParkingSpots(spots),
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

// GetByID - одно место
func (uc *ParkingUseCase) GetByID(ctx context.Context, id int64) (*dto.ParkingSpotResponse, error) {
	spot, err := uc.parkingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.ErrParkingNotFound
		}
		return nil, toAppError(err)
	}
	resp := dto.ConvertParkingSpot(spot)
	return &resp, nil
}

// Health проверяет хранилище
func (uc *ParkingUseCase) Health(ctx context.Context) error {
	return uc.parkingRepo.Health(ctx)
}

// toAppError оставляет AppError как есть, остальное превращает в 500
func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.ErrInternalServer
}
