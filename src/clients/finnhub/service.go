package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"papertrading/src/config"
	"papertrading/src/models"
	"papertrading/src/utils/requests"
)

type FinnhubClientI interface {
	GetQuote(ctx context.Context, symbol string) (*QuoteResponse, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

type FinnhubClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

func NewClient(cfg *config.Config) *FinnhubClient {
	return &FinnhubClient{
		API:     requests.NewExternalAPIService(cfg.Quotes.Timeout, cfg.Quotes.Retries),
		BaseURL: strings.TrimRight(cfg.Quotes.Finnhub.BaseURL, "/"),
		APIKey:  cfg.Quotes.Finnhub.APIKey,
	}
}

// GetQuote fetches the raw quote for a ticker symbol.
func (c *FinnhubClient) GetQuote(ctx context.Context, symbol string) (*QuoteResponse, error) {
	params := url.Values{}
	params.Add("symbol", strings.ToUpper(symbol))
	params.Add("token", c.APIKey)

	var quote QuoteResponse
	if err := c.API.GetJSON(ctx, c.BaseURL+"/quote", "", params, &quote); err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	return &quote, nil
}

// GetPrice returns the current price, or ErrQuoteUnavailable when Finnhub has none.
func (c *FinnhubClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := c.GetQuote(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrQuoteUnavailable, err)
	}
	if quote.C <= 0 {
		return 0, fmt.Errorf("%w: no price for %s", models.ErrQuoteUnavailable, symbol)
	}
	return quote.C, nil
}
