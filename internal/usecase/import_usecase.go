package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
	"github.com/parking-finder/internal/usecase/dto"
)

const maxTagLength = 255

// ErrInvalidDataset - датасет не является корректной FeatureCollection
var ErrInvalidDataset = errors.New("invalid dataset")

// featureCollection - оболочка датасета. Feature разбираются по одной,
// чтобы ошибка называла номер feature.
type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// ImportUseCase - загрузка парковочных мест из GeoJSON
type ImportUseCase struct {
	parkingRepo repository.ParkingRepository
	cacheRepo   repository.CacheRepository // nil если кеш выключен
	tagProperty string
	logger      *zap.Logger
}

// NewImportUseCase - создание нового ImportUseCase.
// tagProperty - имя свойства feature, из которого берётся tag.
func NewImportUseCase(
	parkingRepo repository.ParkingRepository,
	cacheRepo repository.CacheRepository,
	tagProperty string,
	logger *zap.Logger,
) *ImportUseCase {
	if tagProperty == "" {
		tagProperty = "TAG"
	}
	return &ImportUseCase{
		parkingRepo: parkingRepo,
		cacheRepo:   cacheRepo,
		tagProperty: tagProperty,
		logger:      logger,
	}
}

// Load читает FeatureCollection и сохраняет feature i как место с ID i.
// Все feature проверяются до записи; запись идёт одной транзакцией.
// После записи сбрасываются закешированные результаты поиска.
func (uc *ImportUseCase) Load(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	spots, err := uc.Parse(r)
	if err != nil {
		return nil, err
	}

	if err := uc.parkingRepo.BulkInsert(ctx, spots); err != nil {
		uc.logger.Error("Import failed", zap.Int("features", len(spots)), zap.Error(err))
		return nil, fmt.Errorf("store parking spots: %w", err)
	}

	if uc.cacheRepo != nil {
		n, err := uc.cacheRepo.DeleteByPrefix(ctx, searchCachePrefix)
		if err != nil {
			uc.logger.Error("Spots stored but search cache was not cleared", zap.Error(err))
			return nil, fmt.Errorf("%d spots stored, clear search cache: %w", len(spots), err)
		}
		uc.logger.Info("Search cache cleared", zap.Int("keys", n))
	}

	uc.logger.Info("Import finished", zap.Int("count", len(spots)))
	return &dto.ImportResult{Count: len(spots)}, nil
}

// Parse разбирает датасет без записи в хранилище.
// Данные после FeatureCollection считаются ошибкой.
func (uc *ImportUseCase) Parse(r io.Reader) ([]*domain.ParkingSpot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: expected FeatureCollection, got %q", ErrInvalidDataset, fc.Type)
	}

	spots := make([]*domain.ParkingSpot, 0, len(fc.Features))
	for i, raw := range fc.Features {
		spot, err := uc.parseFeature(int64(i), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrInvalidDataset, i, err)
		}
		spots = append(spots, spot)
	}
	return spots, nil
}

func (uc *ImportUseCase) parseFeature(id int64, raw json.RawMessage) (*domain.ParkingSpot, error) {
	f, err := geojson.UnmarshalFeature(raw)
	if err != nil {
		return nil, err
	}

	tag, err := tagValue(f.Properties[uc.tagProperty])
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", uc.tagProperty, err)
	}

	geom, err := domain.NewGeometry(f.Geometry)
	if err != nil {
		return nil, err
	}

	return domain.NewParkingSpot(id, tag, geom), nil
}

// tagValue принимает строку или число; целые числа пишутся без дробной части
func tagValue(v interface{}) (string, error) {
	var tag string
	switch val := v.(type) {
	case nil:
		return "", errors.New("missing")
	case string:
		tag = val
	case float64:
		tag = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "", errors.New("must be a string or a number")
	}

	if utf8.RuneCountInString(tag) > maxTagLength {
		return "", fmt.Errorf("longer than %d characters", maxTagLength)
	}
	return tag, nil
}
