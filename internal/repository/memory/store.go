// Package memory - хранилище в памяти процесса для разработки и тестов
// (STORAGE_DRIVER=memory). Поведение совпадает с PostGIS-репозиториями.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
)

// Store хранит места и пользователей под одним мьютексом,
// чтобы Reserve мог атомарно проверить пользователя и место
type Store struct {
	mu     sync.RWMutex
	spots  map[int64]*domain.ParkingSpot
	users  map[int64]*domain.User
	byName map[string]int64
	nextID int64
	now    func() time.Time
	logger *zap.Logger
}

// NewStore создаёт пустое хранилище
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		spots:  make(map[int64]*domain.ParkingSpot),
		users:  make(map[int64]*domain.User),
		byName: make(map[string]int64),
		nextID: 1,
		now:    time.Now,
		logger: logger,
	}
}

type parkingRepository struct {
	store *Store
}

// NewParkingRepository возвращает ParkingRepository поверх Store
func NewParkingRepository(store *Store) repository.ParkingRepository {
	return &parkingRepository{store: store}
}

// copySpot отдаёт снимок, чтобы вызывающий не мог изменить состояние хранилища
func copySpot(s *domain.ParkingSpot) *domain.ParkingSpot {
	c := *s
	if s.ReservedBy != nil {
		by := *s.ReservedBy
		c.ReservedBy = &by
	}
	if s.ReservedAt != nil {
		at := *s.ReservedAt
		c.ReservedAt = &at
	}
	return &c
}

// sortedIDs возвращает ID мест по возрастанию; вызывать под блокировкой
func (s *Store) sortedIDs(keep func(*domain.ParkingSpot) bool) []int64 {
	ids := make([]int64, 0, len(s.spots))
	for id, spot := range s.spots {
		if keep == nil || keep(spot) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *parkingRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingSpot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	spot, ok := r.store.spots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySpot(spot), nil
}

func (r *parkingRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSpot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	spots := make([]*domain.ParkingSpot, 0, len(sorted))
	for _, id := range sorted {
		if spot, ok := r.store.spots[id]; ok {
			spots = append(spots, copySpot(spot))
		}
	}
	return spots, nil
}

func (r *parkingRepository) List(ctx context.Context, page domain.PaginationParams) ([]*domain.ParkingSpot, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.sortedIDs(nil)
	total := len(ids)

	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	spots := make([]*domain.ParkingSpot, 0, end-start)
	for _, id := range ids[start:end] {
		spots = append(spots, copySpot(r.store.spots[id]))
	}
	return spots, total, nil
}

func (r *parkingRepository) FindWithinRadius(ctx context.Context, point domain.Point, radiusMeters int) ([]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var distErr error
	ids := r.store.sortedIDs(func(spot *domain.ParkingSpot) bool {
		d, err := spot.Geometry.DistanceTo(point)
		if err != nil {
			distErr = fmt.Errorf("spot %d: %w", spot.ID, err)
			return false
		}
		return d <= float64(radiusMeters)
	})
	if distErr != nil {
		r.store.logger.Error("Failed to compute distance", zap.Error(distErr))
		return nil, distErr
	}
	return ids, nil
}

func (r *parkingRepository) Reserve(ctx context.Context, spotID, userID int64) (*domain.ParkingSpot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	spot, ok := r.store.spots[spotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := r.store.users[userID]; !ok {
		return nil, domain.ErrNotFound
	}
	if err := spot.Reserve(userID, r.store.now()); err != nil {
		return nil, err
	}
	return copySpot(spot), nil
}

func (r *parkingRepository) ListReservedBy(ctx context.Context, userID int64) ([]*domain.ParkingSpot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.sortedIDs(func(spot *domain.ParkingSpot) bool {
		return spot.IsReservedBy(userID)
	})
	spots := make([]*domain.ParkingSpot, 0, len(ids))
	for _, id := range ids {
		spots = append(spots, copySpot(r.store.spots[id]))
	}
	return spots, nil
}

// BulkInsert вставляет все места или ни одного
func (r *parkingRepository) BulkInsert(ctx context.Context, spots []*domain.ParkingSpot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	seen := make(map[int64]struct{}, len(spots))
	for _, spot := range spots {
		if _, ok := r.store.spots[spot.ID]; ok {
			return fmt.Errorf("insert spot %d: id already exists", spot.ID)
		}
		if _, ok := seen[spot.ID]; ok {
			return fmt.Errorf("insert spot %d: duplicate id in batch", spot.ID)
		}
		seen[spot.ID] = struct{}{}
	}

	now := r.store.now()
	for _, spot := range spots {
		c := copySpot(spot)
		c.CreatedAt = now
		r.store.spots[spot.ID] = c
	}

	r.store.logger.Info("Parking spots imported", zap.Int("count", len(spots)))
	return nil
}

func (r *parkingRepository) Health(ctx context.Context) error {
	return nil
}
