package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain/repository"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetSpotIDs получает набор ID мест из кеша поиска
func (r *cacheRepository) GetSpotIDs(ctx context.Context, key string) ([]int64, bool, error) {
	data, err := r.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false, err
	}

	ids, err := decodeIDs(data)
	if err != nil {
		r.logger.Warn("Dropping corrupt search cache entry", zap.String("key", key), zap.Error(err))
		_ = r.Delete(ctx, key)
		return nil, false, nil
	}
	return ids, true, nil
}

// SetSpotIDs сохраняет набор ID мест в кеше поиска
func (r *cacheRepository) SetSpotIDs(ctx context.Context, key string, ids []int64, ttl time.Duration) error {
	data, err := encodeIDs(ids)
	if err != nil {
		r.logger.Error("Failed to marshal spot ids", zap.Error(err))
		return fmt.Errorf("marshal spot ids: %w", err)
	}
	return r.Set(ctx, key, data, ttl)
}

// deleteBatch - ключей на один SCAN/DEL
const deleteBatch = 500

// DeleteByPrefix удаляет ключи prefix* через SCAN, без блокирующего KEYS
func (r *cacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	iter := r.client.Scan(ctx, 0, prefix+"*", deleteBatch).Iterator()

	deleted := 0
	batch := make([]string, 0, deleteBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == deleteBatch {
			if err := flush(); err != nil {
				r.logger.Error("Failed to delete cache keys", zap.String("prefix", prefix), zap.Error(err))
				return deleted, fmt.Errorf("cache delete error: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan cache keys", zap.String("prefix", prefix), zap.Error(err))
		return deleted, fmt.Errorf("cache scan error: %w", err)
	}
	if err := flush(); err != nil {
		r.logger.Error("Failed to delete cache keys", zap.String("prefix", prefix), zap.Error(err))
		return deleted, fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache keys deleted", zap.String("prefix", prefix), zap.Int("count", deleted))
	return deleted, nil
}

// encodeIDs всегда пишет JSON-массив, пустой результат тоже кешируется
func encodeIDs(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	return json.Marshal(ids)
}

func decodeIDs(data []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal spot ids: %w", err)
	}
	if ids == nil {
		return nil, errors.New("unmarshal spot ids: not an array")
	}
	return ids, nil
}
