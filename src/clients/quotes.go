// Package clients builds the market data clients used to price trades.
package clients

import (
	"context"

	"papertrading/src/clients/coingecko"
	"papertrading/src/clients/finnhub"
	"papertrading/src/config"
	"papertrading/src/services"
	"papertrading/src/utils"
	redis_utils "papertrading/src/utils/redis"
)

// NewQuoter returns a quote service over Finnhub and CoinGecko. Quotes are cached in
// Redis when a host is configured and in process otherwise. The returned func
// releases the cache connection.
func NewQuoter(ctx context.Context, cfg *config.Config) (services.Quoter, func(), error) {
	cache := services.NewMemoryQuoteCache(cfg.Quotes.CacheTTL)
	closeFn := func() {}

	if cfg.Databases.Redis.Host != "" {
		handler, err := redis_utils.NewRedisHandler(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cache = services.NewRedisQuoteCache(handler, cfg.Quotes.CacheTTL)
		closeFn = func() {
			if err := handler.Close(); err != nil {
				utils.LoggerFromContext(ctx).WithError(err).Warn("failed to close redis")
			}
		}
	}

	quoter := services.NewQuoteService(finnhub.NewClient(cfg), coingecko.NewClient(cfg), cache)
	return quoter, closeFn, nil
}
