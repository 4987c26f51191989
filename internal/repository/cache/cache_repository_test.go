package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/config"
)

func TestEncodeDecodeIDs(t *testing.T) {
	data, err := encodeIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	ids, err := decodeIDs(data)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)

	data, err = encodeIDs([]int64{0, 3, 7})
	require.NoError(t, err)
	ids, err = decodeIDs(data)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 3, 7}, ids)
}

func TestDecodeIDs_Corrupt(t *testing.T) {
	for _, raw := range []string{`{"a":1}`, `null`, `[1,"x"]`, `garbage`} {
		_, err := decodeIDs([]byte(raw))
		assert.Error(t, err, raw)
	}
}

// TestCacheRepository_Redis needs a live Redis; set TEST_REDIS_HOST to run it.
func TestCacheRepository_Redis(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set; skipping Redis test")
	}

	r, err := NewRedis(&config.RedisConfig{Host: host, Port: 6379, DB: 15}, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	repo := NewCacheRepository(r)
	ctx := context.Background()
	key := "test:search:ids"
	defer repo.Delete(ctx, key)

	_, hit, err := repo.GetSpotIDs(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, repo.SetSpotIDs(ctx, key, []int64{1, 2}, time.Minute))
	ids, hit, err := repo.GetSpotIDs(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int64{1, 2}, ids)

	require.NoError(t, repo.Set(ctx, key, []byte("garbage"), time.Minute))
	_, hit, err = repo.GetSpotIDs(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheRepository_DeleteByPrefix(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set; skipping Redis test")
	}

	r, err := NewRedis(&config.RedisConfig{Host: host, Port: 6379, DB: 15}, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	repo := NewCacheRepository(r)
	ctx := context.Background()

	require.NoError(t, repo.SetSpotIDs(ctx, "test:prefix:search:1", []int64{1}, time.Minute))
	require.NoError(t, repo.SetSpotIDs(ctx, "test:prefix:search:2", nil, time.Minute))
	require.NoError(t, repo.SetSpotIDs(ctx, "test:prefix:other", []int64{3}, time.Minute))
	defer repo.Delete(ctx, "test:prefix:other")

	n, err := repo.DeleteByPrefix(ctx, "test:prefix:search:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, hit, err := repo.GetSpotIDs(ctx, "test:prefix:search:2")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = repo.GetSpotIDs(ctx, "test:prefix:other")
	require.NoError(t, err)
	assert.True(t, hit)
}
