package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache[string, float64](time.Minute)
	cache.now = func() time.Time { return now }

	t.Run("hit and miss", func(t *testing.T) {
		cache.Set("AAPL", 190.5)

		price, ok := cache.Get("AAPL")
		assert.True(t, ok)
		assert.Equal(t, 190.5, price)

		_, ok = cache.Get("MSFT")
		assert.False(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		cache.Set("BTC", 64000)
		now = now.Add(2 * time.Minute)

		_, ok := cache.Get("BTC")
		assert.False(t, ok)
		assert.Equal(t, 2, cache.Len())
		assert.Equal(t, 2, cache.Purge())
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("delete", func(t *testing.T) {
		cache.Set("ETH", 3100)
		cache.Delete("ETH")
		_, ok := cache.Get("ETH")
		assert.False(t, ok)
	})

	t.Run("non-positive ttl disables caching", func(t *testing.T) {
		disabled := NewCache[string, int](0)
		disabled.Set("a", 1)
		_, ok := disabled.Get("a")
		assert.False(t, ok)
	})
}
