package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil, nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetSpotIDs получает закешированный набор ID мест для поискового ключа
	GetSpotIDs(ctx context.Context, key string) ([]int64, bool, error)

	// SetSpotIDs сохраняет набор ID мест для поискового ключа
	SetSpotIDs(ctx context.Context, key string, ids []int64, ttl time.Duration) error

	// DeleteByPrefix удаляет все ключи с префиксом, возвращает число удалённых
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}
