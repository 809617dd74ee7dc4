package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/repositories/memory"
	"papertrading/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledger struct {
	store        *memory.Store
	accounts     *services.AccountService
	holdings     *services.HoldingService
	transactions *services.TransactionService
	trades       *services.TradeService
	performance  *services.PerformanceService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	store := memory.NewStore()
	accounts := services.NewAccountService(store, 100000)
	holdings := services.NewHoldingService(store)
	transactions := services.NewTransactionService(store, 50, 1000)
	return &ledger{
		store:        store,
		accounts:     accounts,
		holdings:     holdings,
		transactions: transactions,
		trades:       services.NewTradeService(store, accounts, holdings, transactions),
		performance:  services.NewPerformanceService(accounts, transactions),
	}
}

func (l *ledger) buy(t *testing.T, userID string, asset models.AssetKey, quantity, price float64) *services.TradeResult {
	t.Helper()
	res, err := l.trades.Buy(context.Background(), services.TradeRequest{
		UserID: userID, Asset: asset, Name: asset.ID, Quantity: quantity, Price: price,
	})
	require.NoError(t, err)
	return res
}

func (l *ledger) sell(t *testing.T, userID string, asset models.AssetKey, quantity, price float64) *services.TradeResult {
	t.Helper()
	res, err := l.trades.Sell(context.Background(), services.TradeRequest{
		UserID: userID, Asset: asset, Quantity: quantity, Price: price,
	})
	require.NoError(t, err)
	return res
}

type snapshot struct {
	account      *models.Account
	holdings     []models.Holding
	transactions []models.Transaction
}

func (l *ledger) snapshot(t *testing.T, userID string) snapshot {
	t.Helper()
	ctx := context.Background()
	account, err := l.accounts.Get(ctx, userID)
	require.NoError(t, err)
	holdings, err := l.holdings.List(ctx, userID, "")
	require.NoError(t, err)
	txs, err := l.transactions.History(ctx, userID)
	require.NoError(t, err)
	return snapshot{account: account, holdings: holdings, transactions: txs}
}

func TestTradeScenarios(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	aapl := models.Stock("AAPL")
	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)

	t.Run("A: first buy", func(t *testing.T) {
		res := l.buy(t, "user-1", aapl, 10, 150)
		assert.Equal(t, 98500.0, res.Account.CurrentBalance)
		require.NotNil(t, res.Holding)
		assert.Equal(t, 10.0, res.Holding.Quantity)
		assert.Equal(t, 150.0, res.Holding.AvgBuyPrice)
		assert.Equal(t, 1500.0, res.Holding.TotalCost)
		assert.Equal(t, models.TransactionBuy, res.Transaction.Type)
		assert.Equal(t, 100000.0, res.Transaction.BalanceBefore)
		assert.Equal(t, 98500.0, res.Transaction.BalanceAfter)
		assert.Equal(t, 1500.0, res.Transaction.TotalAmount)

		txs, err := l.transactions.History(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("B: second buy averages cost", func(t *testing.T) {
		res := l.buy(t, "user-1", aapl, 10, 170)
		assert.Equal(t, 96800.0, res.Account.CurrentBalance)
		assert.Equal(t, 20.0, res.Holding.Quantity)
		assert.Equal(t, 160.0, res.Holding.AvgBuyPrice)
		assert.Equal(t, 3200.0, res.Holding.TotalCost)
	})

	t.Run("C: partial sell", func(t *testing.T) {
		res := l.sell(t, "user-1", aapl, 5, 200)
		assert.Equal(t, 97800.0, res.Account.CurrentBalance)
		require.NotNil(t, res.Holding)
		assert.Equal(t, 15.0, res.Holding.Quantity)
		assert.Equal(t, 2400.0, res.Holding.TotalCost)
		assert.Equal(t, 160.0, res.Holding.AvgBuyPrice)
		assert.Equal(t, "AAPL", res.Transaction.Name)

		perf, err := l.performance.Calculate(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, perf.WinningTrades)
		assert.Equal(t, 0, perf.LosingTrades)
		// FIFO matches the 5 shares against the $150 lot.
		assert.InDelta(t, 250.0, perf.TotalProfitLoss, 1e-9)
	})

	t.Run("D: liquidation at a loss", func(t *testing.T) {
		res := l.sell(t, "user-1", aapl, 15, 100)
		assert.Nil(t, res.Holding)
		assert.Equal(t, 99300.0, res.Account.CurrentBalance)

		_, err := l.holdings.Get(ctx, "user-1", aapl)
		assert.ErrorIs(t, err, models.ErrHoldingNotFound)

		_, err = l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 1, Price: 100})
		assert.ErrorIs(t, err, models.ErrHoldingNotFound)

		perf, err := l.performance.Calculate(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, perf.WinningTrades)
		assert.Equal(t, 1, perf.LosingTrades)
		assert.Equal(t, 2, perf.TotalTrades)
		assert.Equal(t, 50.0, perf.WinRate)
		// 5@150 + 10@170 against 15@100.
		require.NotNil(t, perf.WorstTrade)
		assert.InDelta(t, -950.0, perf.WorstTrade.Profit, 1e-9)
		assert.InDelta(t, -700.0, perf.TotalProfitLoss, 1e-9)
	})
}

func TestTradeRejectionsLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	aapl := models.Stock("AAPL")
	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)
	l.buy(t, "user-1", aapl, 10, 150)
	before := l.snapshot(t, "user-1")

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"insufficient funds", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 1000, Price: 150})
			return err
		}, models.ErrInsufficientFunds},
		{"zero quantity buy", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 0, Price: 150})
			return err
		}, models.ErrInvalidQuantity},
		{"negative quantity sell", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: -1, Price: 150})
			return err
		}, models.ErrInvalidQuantity},
		{"zero price", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 1, Price: 0})
			return err
		}, models.ErrInvalidPrice},
		{"NaN quantity buy", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: math.NaN(), Price: 150})
			return err
		}, models.ErrInvalidQuantity},
		{"infinite quantity sell", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: math.Inf(1), Price: 150})
			return err
		}, models.ErrInvalidQuantity},
		{"NaN price buy", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 1, Price: math.NaN()})
			return err
		}, models.ErrInvalidPrice},
		{"infinite price sell", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 1, Price: math.Inf(1)})
			return err
		}, models.ErrInvalidPrice},
		{"insufficient quantity", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 11, Price: 150})
			return err
		}, models.ErrInsufficientQuantity},
		{"sell just above held quantity", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 10.0000000009, Price: 150})
			return err
		}, models.ErrInsufficientQuantity},
		{"unknown holding", func() error {
			_, err := l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: models.Crypto("bitcoin"), Quantity: 1, Price: 150})
			return err
		}, models.ErrHoldingNotFound},
		{"unknown account", func() error {
			_, err := l.trades.Buy(ctx, services.TradeRequest{UserID: "nobody", Asset: aapl, Quantity: 1, Price: 150})
			return err
		}, models.ErrAccountNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), tc.want)
			assert.Equal(t, before, l.snapshot(t, "user-1"))
		})
	}
}

func TestTradeBalanceConservation(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)

	btc := models.Crypto("bitcoin")
	msft := models.Stock("MSFT")
	l.buy(t, "user-1", btc, 0.125, 64000.5)
	l.buy(t, "user-1", msft, 3, 410.37)
	l.buy(t, "user-1", btc, 0.2, 61000)
	l.sell(t, "user-1", btc, 0.1, 66000.25)
	l.sell(t, "user-1", msft, 3, 399.99)
	l.sell(t, "user-1", btc, 0.225, 60000)

	snap := l.snapshot(t, "user-1")
	expected := snap.account.InitialBalance
	for _, tx := range snap.transactions {
		if tx.Type == models.TransactionBuy {
			expected -= tx.TotalAmount
		} else {
			expected += tx.TotalAmount
		}
	}
	assert.InDelta(t, expected, snap.account.CurrentBalance, 1e-6)
	assert.Empty(t, snap.holdings, "fractional amounts liquidate fully")
	assert.Len(t, snap.transactions, 6)
}

func TestHoldingCostBasisConsistency(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)

	eth := models.Crypto("ethereum")
	l.buy(t, "user-1", eth, 1.5, 3100.12)
	l.buy(t, "user-1", eth, 0.75, 2950.7)
	res := l.sell(t, "user-1", eth, 0.333, 3300)

	h := res.Holding
	require.NotNil(t, h)
	assert.InEpsilon(t, h.Quantity*h.AvgBuyPrice, h.TotalCost, 1e-6)
	assert.InDelta(t, (1.5*3100.12+0.75*2950.7)/2.25, h.AvgBuyPrice, 1e-9)
}

func TestTradeFractionalPositions(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)
	btc := models.Crypto("bitcoin")

	l.buy(t, "user-1", btc, 1e-10, 60000)
	res := l.sell(t, "user-1", btc, 5e-11, 60000)
	require.NotNil(t, res.Holding)
	assert.InEpsilon(t, 5e-11, res.Holding.Quantity, 1e-9)

	_, err = l.trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: btc, Quantity: 1, Price: 60000})
	assert.ErrorIs(t, err, models.ErrInsufficientQuantity)
}

type failingTransactions struct {
	repositories.TransactionRepository
	err error
}

func (r failingTransactions) Create(context.Context, *models.Transaction) error { return r.err }

// brokenLogStore fails every transaction insert after the balance and holding writes.
type brokenLogStore struct {
	*memory.Store
	err error
}

func (s brokenLogStore) Transactions() repositories.TransactionRepository {
	return failingTransactions{TransactionRepository: s.Store.Transactions(), err: s.err}
}

func TestTradeRollsBackWhenLogWriteFails(t *testing.T) {
	ctx := context.Background()
	aapl := models.Stock("AAPL")
	healthy := newLedger(t)
	_, err := healthy.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)
	healthy.buy(t, "user-1", aapl, 10, 150)
	before := healthy.snapshot(t, "user-1")

	errDisk := errors.New("disk full")
	broken := brokenLogStore{Store: healthy.store, err: errDisk}
	accounts := services.NewAccountService(broken, 100000)
	holdings := services.NewHoldingService(broken)
	transactions := services.NewTransactionService(broken, 50, 1000)
	trades := services.NewTradeService(broken, accounts, holdings, transactions)

	_, err = trades.Buy(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 5, Price: 160})
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, services.IsLedgerRejection(err))
	assert.Equal(t, before, healthy.snapshot(t, "user-1"))

	_, err = trades.Sell(ctx, services.TradeRequest{UserID: "user-1", Asset: aapl, Quantity: 10, Price: 200})
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, before, healthy.snapshot(t, "user-1"))
}
