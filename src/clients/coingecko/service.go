package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"papertrading/src/config"
	"papertrading/src/models"
	"papertrading/src/utils/requests"
)

const vsCurrency = "usd"

type CoinGeckoClientI interface {
	GetSimplePrice(ctx context.Context, coinIDs ...string) (SimplePriceResponse, error)
	GetPrice(ctx context.Context, coinID string) (float64, error)
}

type CoinGeckoClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

func NewClient(cfg *config.Config) *CoinGeckoClient {
	return &CoinGeckoClient{
		API:     requests.NewExternalAPIService(cfg.Quotes.Timeout, cfg.Quotes.Retries),
		BaseURL: strings.TrimRight(cfg.Quotes.CoinGecko.BaseURL, "/"),
		APIKey:  cfg.Quotes.CoinGecko.APIKey,
	}
}

// GetSimplePrice fetches USD prices for one or more coin ids in a single call.
func (c *CoinGeckoClient) GetSimplePrice(ctx context.Context, coinIDs ...string) (SimplePriceResponse, error) {
	params := url.Values{}
	params.Add("ids", strings.ToLower(strings.Join(coinIDs, ",")))
	params.Add("vs_currencies", vsCurrency)
	if c.APIKey != "" {
		params.Add("x_cg_demo_api_key", c.APIKey)
	}

	var prices SimplePriceResponse
	if err := c.API.GetJSON(ctx, c.BaseURL+"/simple/price", "", params, &prices); err != nil {
		return nil, fmt.Errorf("coingecko price %s: %w", strings.Join(coinIDs, ","), err)
	}
	return prices, nil
}

func (c *CoinGeckoClient) GetPrice(ctx context.Context, coinID string) (float64, error) {
	coinID = strings.ToLower(coinID)
	prices, err := c.GetSimplePrice(ctx, coinID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrQuoteUnavailable, err)
	}
	price := prices[coinID][vsCurrency]
	if price <= 0 {
		return 0, fmt.Errorf("%w: no price for %s", models.ErrQuoteUnavailable, coinID)
	}
	return price, nil
}
