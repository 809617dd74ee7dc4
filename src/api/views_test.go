package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"papertrading/src/api"
	"papertrading/src/api/controllers"
	"papertrading/src/config"
	"papertrading/src/models"
	"papertrading/src/repositories/memory"
	"papertrading/src/schemas"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedQuoter map[models.AssetKey]float64

func (q fixedQuoter) GetQuote(_ context.Context, asset models.AssetKey) (float64, error) {
	price, ok := q[asset]
	if !ok {
		return 0, models.ErrQuoteUnavailable
	}
	return price, nil
}

type testServer struct {
	server *api.Server
	quotes fixedQuoter
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg, err := config.LoadConfig("../../settings", "TESTING")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	quotes := fixedQuoter{
		models.Stock("AAPL"):     100,
		models.Crypto("bitcoin"): 40000,
	}
	controller := controllers.NewPaperTradingController(cfg, memory.NewStore(), quotes)
	server := api.NewServer(cfg, controller, logger)

	_, token, err := server.TokenAuth.Encode(map[string]interface{}{"sub": "user-1"})
	require.NoError(t, err)
	return &testServer{server: server, quotes: quotes, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAlive(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	rec := s.do(t, http.MethodGet, "/alive", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/paper-trading/account", nil)
		rec := httptest.NewRecorder()
		s.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without subject", func(t *testing.T) {
		_, token, err := s.server.TokenAuth.Encode(map[string]interface{}{"role": "viewer"})
		require.NoError(t, err)
		anonymous := &testServer{server: s.server, token: token}
		rec := anonymous.do(t, http.MethodGet, "/api/paper-trading/account", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/paper-trading/account", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	account := decode[models.Account](t, rec)
	assert.Equal(t, "user-1", account.UserID)
	assert.Equal(t, 50000.0, account.CurrentBalance)

	rec = s.do(t, http.MethodPost, "/api/paper-trading/account", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/paper-trading/account", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50000.0, decode[models.Account](t, rec).InitialBalance)
}

func TestTradingFlow(t *testing.T) {
	s := newTestServer(t)

	t.Run("buy opens the account lazily", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/buy", schemas.StockTradeRequest{
			Symbol: "aapl", Name: "Apple Inc.", Shares: 10,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[schemas.TradeResponse](t, rec)
		assert.Equal(t, "Successfully bought 10 shares of AAPL at $100.00", res.Message)
		assert.Equal(t, 49000.0, res.Account.CurrentBalance)
		assert.Equal(t, 10.0, res.Holding.Quantity)
		assert.Equal(t, models.TransactionBuy, res.Transaction.Type)
	})

	t.Run("crypto buy", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/crypto/buy", schemas.CryptoTradeRequest{
			CoinID: "bitcoin", Name: "Bitcoin", Amount: 0.25,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[schemas.TradeResponse](t, rec)
		assert.Equal(t, 39000.0, res.Account.CurrentBalance)
	})

	t.Run("insufficient funds leaves the ledger unchanged", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/crypto/buy", schemas.CryptoTradeRequest{
			CoinID: "bitcoin", Amount: 1,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/paper-trading/account", nil)
		assert.Equal(t, 39000.0, decode[models.Account](t, rec).CurrentBalance)
	})

	t.Run("invalid bodies", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/buy", schemas.StockTradeRequest{Symbol: "AAPL"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPost, "/api/paper-trading/stocks/buy", schemas.StockTradeRequest{Shares: 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/api/paper-trading/stocks/buy", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+s.token)
		raw := httptest.NewRecorder()
		s.server.ServeHTTP(raw, req)
		assert.Equal(t, http.StatusBadRequest, raw.Code)
	})

	t.Run("unknown quote", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/buy", schemas.StockTradeRequest{Symbol: "ZZZZ", Shares: 1})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("sell unknown holding", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/sell", schemas.StockTradeRequest{Symbol: "MSFT", Shares: 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("oversell", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/sell", schemas.StockTradeRequest{Symbol: "AAPL", Shares: 11})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sell at a higher price", func(t *testing.T) {
		s.quotes[models.Stock("AAPL")] = 120
		rec := s.do(t, http.MethodPost, "/api/paper-trading/stocks/sell", schemas.StockTradeRequest{Symbol: "AAPL", Shares: 10})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[schemas.TradeResponse](t, rec)
		assert.Nil(t, res.Holding)
		assert.Equal(t, 40200.0, res.Account.CurrentBalance)
		assert.Equal(t, "Apple Inc.", res.Transaction.Name)
	})

	t.Run("holdings", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/holdings", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[schemas.HoldingsResponse](t, rec)
		require.Equal(t, 1, res.Count)
		assert.Equal(t, models.Crypto("bitcoin"), res.Holdings[0].Asset)

		rec = s.do(t, http.MethodGet, "/api/paper-trading/holdings?assetType=bonds", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("transactions", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/transactions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[schemas.TransactionsResponse](t, rec)
		require.Equal(t, 3, res.Count)
		assert.Equal(t, models.TransactionSell, res.Transactions[0].Type)

		rec = s.do(t, http.MethodGet, "/api/paper-trading/transactions?type=buy&assetType=stock", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[schemas.TransactionsResponse](t, rec).Count)

		rec = s.do(t, http.MethodGet, "/api/paper-trading/transactions?limit=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[schemas.TransactionsResponse](t, rec).Count)

		rec = s.do(t, http.MethodGet, "/api/paper-trading/transactions?limit=-3", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("performance", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/performance", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		perf := decode[models.Performance](t, rec)
		assert.Equal(t, 1, perf.TotalTrades)
		assert.Equal(t, 1, perf.WinningTrades)
		assert.InDelta(t, 200.0, perf.TotalProfitLoss, 1e-9)
	})

	t.Run("portfolio", func(t *testing.T) {
		s.quotes[models.Crypto("bitcoin")] = 48000
		rec := s.do(t, http.MethodGet, "/api/paper-trading/portfolio", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		valuation := decode[models.Valuation](t, rec)
		assert.Equal(t, 52200.0, valuation.TotalValue)

		rec = s.do(t, http.MethodPost, "/api/paper-trading/portfolio/refresh", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = s.do(t, http.MethodGet, "/api/paper-trading/account", nil)
		assert.Equal(t, 52200.0, decode[models.Account](t, rec).TotalValue)
	})

	t.Run("export", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/transactions/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.Equal(t, []byte("PK"), rec.Body.Bytes()[:2])

		rec = s.do(t, http.MethodGet, "/api/paper-trading/transactions/export?format=csv", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Date,Type,Asset Type"))

		rec = s.do(t, http.MethodGet, "/api/paper-trading/transactions/export?format=docx", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("statement", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/statement", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	})

	t.Run("allocation chart", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/paper-trading/portfolio/allocation", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "bitcoin")
	})
}
