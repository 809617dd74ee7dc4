package coingecko_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"papertrading/src/clients/coingecko"
	"papertrading/src/config"
	"papertrading/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *coingecko.CoinGeckoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Quotes.CoinGecko.BaseURL = server.URL
	cfg.Quotes.Timeout = time.Second
	cfg.Quotes.Retries = 1
	client := coingecko.NewClient(cfg)
	client.API.WithBackoff(time.Millisecond)
	return client
}

func TestGetSimplePrice(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Empty(t, r.URL.Query().Get("x_cg_demo_api_key"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64000.5},"ethereum":{"usd":3100}}`))
	})

	prices, err := client.GetSimplePrice(context.Background(), "Bitcoin", "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 64000.5, prices["bitcoin"]["usd"])
	assert.Equal(t, 3100.0, prices["ethereum"]["usd"])
}

func TestGetPrice(t *testing.T) {
	t.Run("known coin", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"solana":{"usd":150.75}}`))
		})

		price, err := client.GetPrice(context.Background(), "SOLANA")
		require.NoError(t, err)
		assert.Equal(t, 150.75, price)
	})

	t.Run("unknown coin yields an empty object", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.GetPrice(context.Background(), "not-a-coin")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
	})

	t.Run("server error", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.GetPrice(context.Background(), "bitcoin")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
	})
}
