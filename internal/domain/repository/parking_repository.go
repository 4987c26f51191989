package repository

import (
	"context"

	"github.com/parking-finder/internal/domain"
)

// ParkingRepository определяет методы для работы с парковочными местами
type ParkingRepository interface {
	// GetByID возвращает место по ID (domain.ErrNotFound если нет)
	GetByID(ctx context.Context, id int64) (*domain.ParkingSpot, error)

	// GetByIDs возвращает места по списку ID в порядке возрастания ID
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSpot, error)

	// List возвращает страницу всех мест и общее количество
	List(ctx context.Context, page domain.PaginationParams) ([]*domain.ParkingSpot, int, error)

	// FindWithinRadius возвращает ID всех мест в радиусе radiusMeters от точки
	// (граница включительно), упорядоченные по возрастанию
	FindWithinRadius(ctx context.Context, point domain.Point, radiusMeters int) ([]int64, error)

	// Reserve атомарно бронирует свободное место:
	// domain.ErrNotFound - места нет, domain.ErrAlreadyReserved - уже занято
	Reserve(ctx context.Context, spotID, userID int64) (*domain.ParkingSpot, error)

	// ListReservedBy возвращает места, забронированные пользователем
	ListReservedBy(ctx context.Context, userID int64) ([]*domain.ParkingSpot, error)

	// BulkInsert вставляет все места в одной транзакции
	BulkInsert(ctx context.Context, spots []*domain.ParkingSpot) error

	// Health проверяет доступность хранилища
	Health(ctx context.Context) error
}
