package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/config"
)

// Короткие таймауты: кеш поиска необязателен, при медленном Redis
// запрос должен уйти в хранилище, а не ждать
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// Redis - клиент кеша наборов ID поиска
type Redis struct {
	client *redis.Client
	addr   string
	logger *zap.Logger
}

// NewRedis подключается к Redis и проверяет соединение
func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	r := &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
		}),
		addr:   cfg.Addr(),
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := r.Health(ctx); err != nil {
		_ = r.client.Close()
		return nil, err
	}

	logger.Info("Redis search cache connected",
		zap.String("addr", r.addr),
		zap.Int("db", cfg.DB),
	)
	return r, nil
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection", zap.String("addr", r.addr))
	return r.client.Close()
}

// Health - PING к Redis
func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", r.addr, err)
	}
	return nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}
