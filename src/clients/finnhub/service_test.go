package finnhub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"papertrading/src/clients/finnhub"
	"papertrading/src/config"
	"papertrading/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *finnhub.FinnhubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Quotes.Finnhub.BaseURL = server.URL + "/"
	cfg.Quotes.Finnhub.APIKey = "test-key"
	cfg.Quotes.Timeout = time.Second
	cfg.Quotes.Retries = 2
	client := finnhub.NewClient(cfg)
	client.API.WithBackoff(time.Millisecond)
	return client
}

func TestGetPrice(t *testing.T) {
	t.Run("returns the current price", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			assert.Equal(t, "test-key", r.URL.Query().Get("token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"c":190.25,"d":1.1,"dp":0.58,"h":191,"l":188,"o":189,"pc":189.15,"t":1700000000}`))
		})

		price, err := client.GetPrice(context.Background(), "aapl")
		require.NoError(t, err)
		assert.Equal(t, 190.25, price)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
		})

		_, err := client.GetPrice(context.Background(), "NOPE")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"c":10}`))
		})

		price, err := client.GetPrice(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 10.0, price)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.GetPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		var calls int32
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.GetPrice(context.Background(), "AAPL")
		assert.ErrorIs(t, err, models.ErrQuoteUnavailable)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})
}
