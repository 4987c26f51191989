package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/usecase"
)

const lotsDataset = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"TAG": "Lot-A"},
     "geometry": {"type": "Polygon", "coordinates": [[[-86.5300,39.1650],[-86.5290,39.1650],[-86.5290,39.1660],[-86.5300,39.1660],[-86.5300,39.1650]]]}},
    {"type": "Feature", "properties": {"TAG": 17},
     "geometry": {"type": "Point", "coordinates": [-86.5295,39.1755]}}
  ]
}`

func TestImportUseCase_Load(t *testing.T) {
	ctx := context.Background()
	repo := &MockParkingRepository{}
	uc := usecase.NewImportUseCase(repo, nil, "", zap.NewNop())

	repo.On("BulkInsert", ctx, mock.MatchedBy(func(spots []*domain.ParkingSpot) bool {
		return len(spots) == 2 &&
			spots[0].ID == 0 && spots[0].Tag == "Lot-A" && spots[0].Geometry.Type == domain.GeometryPolygon &&
			spots[1].ID == 1 && spots[1].Tag == "17" && !spots[1].Reserved
	})).Return(nil)

	res, err := uc.Load(ctx, strings.NewReader(lotsDataset))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	repo.AssertExpectations(t)
}

func TestImportUseCase_LoadStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &MockParkingRepository{}
	uc := usecase.NewImportUseCase(repo, nil, "TAG", zap.NewNop())
	repo.On("BulkInsert", ctx, mock.Anything).Return(errors.New("insert spot 1: id already exists"))

	_, err := uc.Load(ctx, strings.NewReader(lotsDataset))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spot 1")
}

func TestImportUseCase_CustomTagProperty(t *testing.T) {
	uc := usecase.NewImportUseCase(&MockParkingRepository{}, nil, "name", zap.NewNop())

	spots, err := uc.Parse(strings.NewReader(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"North"},"geometry":{"type":"Point","coordinates":[1,2]}}]}`))
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, "North", spots[0].Tag)
}

func TestImportUseCase_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"not json", `{`, "invalid dataset"},
		{"wrong type", `{"type":"Feature"}`, "expected FeatureCollection"},
		{"missing tag", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"TAG":"ok"},"geometry":{"type":"Point","coordinates":[1,2]}},
			{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}]}`, "feature 1"},
		{"boolean tag", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"TAG":true},"geometry":{"type":"Point","coordinates":[1,2]}}]}`, "feature 0"},
		{"bad geometry", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"TAG":"x"},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]}}]}`, "feature 0"},
		{"trailing data", `{"type":"FeatureCollection","features":[]} {"type":"Feature"}`, "invalid dataset"},
		{"null geometry", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"TAG":"x"},"geometry":null}]}`, "feature 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockParkingRepository{}
			uc := usecase.NewImportUseCase(repo, nil, "TAG", zap.NewNop())

			_, err := uc.Load(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, usecase.ErrInvalidDataset)
			assert.Contains(t, err.Error(), tt.wantMsg)
			repo.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
		})
	}
}

func TestImportUseCase_NumericTags(t *testing.T) {
	uc := usecase.NewImportUseCase(&MockParkingRepository{}, nil, "TAG", zap.NewNop())

	spots, err := uc.Parse(strings.NewReader(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"TAG":17},"geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","properties":{"TAG":2.5},"geometry":{"type":"Point","coordinates":[1,2]}}]}`))
	require.NoError(t, err)
	require.Len(t, spots, 2)
	assert.Equal(t, "17", spots[0].Tag)
	assert.Equal(t, "2.5", spots[1].Tag)
}

func TestImportUseCase_ClearsSearchCache(t *testing.T) {
	ctx := context.Background()

	t.Run("cleared after insert", func(t *testing.T) {
		repo := &MockParkingRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewImportUseCase(repo, cache, "TAG", zap.NewNop())

		repo.On("BulkInsert", ctx, mock.Anything).Return(nil)
		cache.On("DeleteByPrefix", ctx, "parking:search:").Return(3, nil)

		res, err := uc.Load(ctx, strings.NewReader(lotsDataset))
		require.NoError(t, err)
		assert.Equal(t, 2, res.Count)
		cache.AssertExpectations(t)
	})

	t.Run("failed insert keeps cache", func(t *testing.T) {
		repo := &MockParkingRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewImportUseCase(repo, cache, "TAG", zap.NewNop())

		repo.On("BulkInsert", ctx, mock.Anything).Return(errors.New("insert spot 0: id already exists"))

		_, err := uc.Load(ctx, strings.NewReader(lotsDataset))
		require.Error(t, err)
		cache.AssertNotCalled(t, "DeleteByPrefix", mock.Anything, mock.Anything)
	})

	t.Run("cache failure is reported", func(t *testing.T) {
		repo := &MockParkingRepository{}
		cache := &MockCacheRepository{}
		uc := usecase.NewImportUseCase(repo, cache, "TAG", zap.NewNop())

		repo.On("BulkInsert", ctx, mock.Anything).Return(nil)
		cache.On("DeleteByPrefix", ctx, "parking:search:").Return(0, errors.New("connection refused"))

		_, err := uc.Load(ctx, strings.NewReader(lotsDataset))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 spots stored")
	})
}
