package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/parking-finder/internal/domain"
)

// MockParkingRepository is a mock of ParkingRepository
type MockParkingRepository struct {
	mock.Mock
}

func (m *MockParkingRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingSpot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpot), args.Error(1)
}

func (m *MockParkingRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSpot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ParkingSpot), args.Error(1)
}

func (m *MockParkingRepository) List(ctx context.Context, page domain.PaginationParams) ([]*domain.ParkingSpot, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ParkingSpot), args.Int(1), args.Error(2)
}

func (m *MockParkingRepository) FindWithinRadius(ctx context.Context, point domain.Point, radiusMeters int) ([]int64, error) {
	args := m.Called(ctx, point, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockParkingRepository) Reserve(ctx context.Context, spotID, userID int64) (*domain.ParkingSpot, error) {
	args := m.Called(ctx, spotID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpot), args.Error(1)
}

func (m *MockParkingRepository) ListReservedBy(ctx context.Context, userID int64) ([]*domain.ParkingSpot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ParkingSpot), args.Error(1)
}

func (m *MockParkingRepository) BulkInsert(ctx context.Context, spots []*domain.ParkingSpot) error {
	args := m.Called(ctx, spots)
	return args.Error(0)
}

func (m *MockParkingRepository) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetSpotIDs(ctx context.Context, key string) ([]int64, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]int64), args.Bool(1), args.Error(2)
}

func (m *MockCacheRepository) SetSpotIDs(ctx context.Context, key string, ids []int64, ttl time.Duration) error {
	args := m.Called(ctx, key, ids, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}
