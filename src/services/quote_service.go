package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"papertrading/src/models"
	"papertrading/src/utils"
	redis_utils "papertrading/src/utils/redis"
)

// Quoter resolves the current unit price of an asset.
type Quoter interface {
	GetQuote(ctx context.Context, asset models.AssetKey) (float64, error)
}

// PriceSource is one provider, e.g. Finnhub for stocks or CoinGecko for crypto.
type PriceSource interface {
	GetPrice(ctx context.Context, id string) (float64, error)
}

type QuoteCache interface {
	GetPrice(ctx context.Context, asset models.AssetKey) (float64, bool)
	SetPrice(ctx context.Context, asset models.AssetKey, price float64)
}

type QuoteService struct {
	stocks PriceSource
	crypto PriceSource
	cache  QuoteCache
}

func NewQuoteService(stocks, crypto PriceSource, cache QuoteCache) *QuoteService {
	return &QuoteService{stocks: stocks, crypto: crypto, cache: cache}
}

func (s *QuoteService) GetQuote(ctx context.Context, asset models.AssetKey) (float64, error) {
	if s.cache != nil {
		if price, ok := s.cache.GetPrice(ctx, asset); ok {
			return price, nil
		}
	}

	var source PriceSource
	switch asset.Kind {
	case models.AssetKindStock:
		source = s.stocks
	case models.AssetKindCrypto:
		source = s.crypto
	}
	if source == nil {
		return 0, fmt.Errorf("%w: no price source for %s", models.ErrQuoteUnavailable, asset.Kind)
	}

	price, err := source.GetPrice(ctx, asset.ID)
	if err != nil {
		return 0, err
	}
	if !models.IsPositiveAmount(price) {
		return 0, fmt.Errorf("%w: non-positive price for %s", models.ErrQuoteUnavailable, asset)
	}
	if s.cache != nil {
		s.cache.SetPrice(ctx, asset, price)
	}
	return price, nil
}

type memoryQuoteCache struct {
	cache *utils.Cache[models.AssetKey, float64]
}

func NewMemoryQuoteCache(ttl time.Duration) QuoteCache {
	return memoryQuoteCache{cache: utils.NewCache[models.AssetKey, float64](ttl)}
}

func (c memoryQuoteCache) GetPrice(_ context.Context, asset models.AssetKey) (float64, bool) {
	return c.cache.Get(asset)
}

func (c memoryQuoteCache) SetPrice(_ context.Context, asset models.AssetKey, price float64) {
	c.cache.Set(asset, price)
}

type redisQuoteCache struct {
	redis *redis_utils.RedisHandler
	ttl   time.Duration
}

// NewRedisQuoteCache shares quotes between API and worker instances. Redis errors are
// logged and treated as misses. A ttl <= 0 disables caching, as with the in-process
// cache.
func NewRedisQuoteCache(handler *redis_utils.RedisHandler, ttl time.Duration) QuoteCache {
	return redisQuoteCache{redis: handler, ttl: ttl}
}

func quoteKey(asset models.AssetKey) string {
	return redis_utils.CacheKey("quote", asset.String())
}

func (c redisQuoteCache) GetPrice(ctx context.Context, asset models.AssetKey) (float64, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	var price float64
	err := c.redis.Get(ctx, quoteKey(asset), &price)
	if err != nil {
		if !errors.Is(err, redis_utils.ErrCacheMiss) {
			utils.LoggerFromContext(ctx).WithError(err).Warn("quote cache read failed")
		}
		return 0, false
	}
	return price, true
}

func (c redisQuoteCache) SetPrice(ctx context.Context, asset models.AssetKey, price float64) {
	if c.ttl <= 0 {
		return
	}
	if err := c.redis.Set(ctx, quoteKey(asset), price, c.ttl); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("quote cache write failed")
	}
}
