package redis_utils_test

import (
	"context"
	"os"
	"testing"
	"time"

	redis_utils "papertrading/src/utils/redis"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := redis_utils.CacheKey("quote", "stock_AAPL")
	assert.Equal(t, a, redis_utils.CacheKey("quote", "stock_AAPL"))
	assert.NotEqual(t, a, redis_utils.CacheKey("quote", "crypto_bitcoin"))
	assert.Len(t, a, 36)
}

// TestRedisHandler needs a reachable server, e.g. TEST_REDIS_ADDR=localhost:6379.
func TestRedisHandler(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())
	handler := redis_utils.NewRedisHandlerWithClient(client)
	defer handler.Close()

	key := redis_utils.CacheKey("test", t.Name(), time.Now().String())

	var price float64
	assert.ErrorIs(t, handler.Get(ctx, key, &price), redis_utils.ErrCacheMiss)

	require.NoError(t, handler.Set(ctx, key, 190.25, time.Minute))
	require.NoError(t, handler.Get(ctx, key, &price))
	assert.Equal(t, 190.25, price)

	require.NoError(t, handler.Delete(ctx, key))
	assert.ErrorIs(t, handler.Get(ctx, key, &price), redis_utils.ErrCacheMiss)
}
