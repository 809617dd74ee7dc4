// Package repotest holds the behaviour every repositories.Store implementation must
// share. Backends run it from their own tests.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract exercises store with user ids unique to this run.
func RunStoreContract(t *testing.T, store repositories.Store) {
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	base := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("accounts", func(t *testing.T) {
		userID := "contract-acc-" + suffix
		account := models.NewAccount(userID, 1000, base)
		require.NoError(t, store.Accounts().Create(ctx, account))
		assert.ErrorIs(t, store.Accounts().Create(ctx, account), repositories.ErrAlreadyExists)

		got, err := store.Accounts().GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, got.CurrentBalance)
		assert.Equal(t, 1000.0, got.TotalValue)

		updated, err := store.Accounts().AdjustBalance(ctx, userID, -250.5)
		require.NoError(t, err)
		assert.Equal(t, 749.5, updated.CurrentBalance)
		assert.Equal(t, 1000.0, updated.InitialBalance)

		require.NoError(t, store.Accounts().SetTotalValue(ctx, userID, 1200))
		got, err = store.Accounts().GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1200.0, got.TotalValue)

		ids, err := store.Accounts().ListUserIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, userID)

		_, err = store.Accounts().GetByUserID(ctx, "missing-"+suffix)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, store.Accounts().SetTotalValue(ctx, "missing-"+suffix, 1), repositories.ErrNotFound)
	})

	t.Run("holdings", func(t *testing.T) {
		userID := "contract-hold-" + suffix
		require.NoError(t, store.Accounts().Create(ctx, models.NewAccount(userID, 1000, base)))

		stock := models.NewHolding(userID, models.Stock("AAPL"), "Apple", 10, 150, base)
		require.NoError(t, store.Holdings().Upsert(ctx, stock))
		assert.NotEmpty(t, stock.ID)
		coin := models.NewHolding(userID, models.Crypto("bitcoin"), "Bitcoin", 0.5, 60000, base.Add(time.Second))
		require.NoError(t, store.Holdings().Upsert(ctx, coin))

		all, err := store.Holdings().ListByUserID(ctx, userID, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, models.Crypto("bitcoin"), all[0].Asset, "newest first")

		stocks, err := store.Holdings().ListByUserID(ctx, userID, models.AssetKindStock)
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, "Apple", stocks[0].Name)

		got, err := store.Holdings().Get(ctx, userID, models.Stock("AAPL"))
		require.NoError(t, err)
		got.ApplyBuy(10, 170, base.Add(2*time.Second))
		require.NoError(t, store.Holdings().Upsert(ctx, got))

		got, err = store.Holdings().Get(ctx, userID, models.Stock("AAPL"))
		require.NoError(t, err)
		assert.Equal(t, 20.0, got.Quantity)
		assert.Equal(t, 160.0, got.AvgBuyPrice)
		assert.Equal(t, 3200.0, got.TotalCost)

		require.NoError(t, store.Holdings().Delete(ctx, userID, models.Stock("AAPL")))
		_, err = store.Holdings().Get(ctx, userID, models.Stock("AAPL"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, store.Holdings().Delete(ctx, userID, models.Stock("AAPL")), repositories.ErrNotFound)
	})

	t.Run("transactions", func(t *testing.T) {
		userID := "contract-tx-" + suffix
		require.NoError(t, store.Accounts().Create(ctx, models.NewAccount(userID, 1000, base)))

		txs := []*models.Transaction{
			{UserID: userID, Type: models.TransactionBuy, Asset: models.Stock("AAPL"), Name: "Apple", Quantity: 1, Price: 100, TotalAmount: 100, BalanceBefore: 1000, BalanceAfter: 900, Timestamp: base},
			{UserID: userID, Type: models.TransactionBuy, Asset: models.Crypto("bitcoin"), Name: "Bitcoin", Quantity: 0.01, Price: 10000, TotalAmount: 100, BalanceBefore: 900, BalanceAfter: 800, Timestamp: base.Add(time.Second)},
			{UserID: userID, Type: models.TransactionSell, Asset: models.Stock("AAPL"), Name: "Apple", Quantity: 1, Price: 110, TotalAmount: 110, BalanceBefore: 800, BalanceAfter: 910, Timestamp: base.Add(2 * time.Second)},
		}
		for _, tx := range txs {
			require.NoError(t, store.Transactions().Create(ctx, tx))
			assert.NotEmpty(t, tx.ID)
		}

		list, err := store.Transactions().List(ctx, userID, models.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, models.TransactionSell, list[0].Type, "newest first")

		limited, err := store.Transactions().List(ctx, userID, models.TransactionFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		buys, err := store.Transactions().List(ctx, userID, models.TransactionFilter{Type: models.TransactionBuy})
		require.NoError(t, err)
		assert.Len(t, buys, 2)

		crypto, err := store.Transactions().List(ctx, userID, models.TransactionFilter{AssetKind: models.AssetKindCrypto})
		require.NoError(t, err)
		require.Len(t, crypto, 1)
		assert.Equal(t, "bitcoin", crypto[0].Asset.ID)

		history, err := store.Transactions().History(ctx, userID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, txs[0].ID, history[0].ID)
		assert.Equal(t, txs[2].ID, history[2].ID)
	})

	t.Run("WithinTx rolls back on error", func(t *testing.T) {
		userID := "contract-rollback-" + suffix
		require.NoError(t, store.Accounts().Create(ctx, models.NewAccount(userID, 1000, base)))

		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := store.Accounts().GetByUserIDForUpdate(ctx, userID); err != nil {
				return err
			}
			if _, err := store.Accounts().AdjustBalance(ctx, userID, -500); err != nil {
				return err
			}
			h := models.NewHolding(userID, models.Stock("TSLA"), "Tesla", 2, 250, base)
			if err := store.Holdings().Upsert(ctx, h); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		account, err := store.Accounts().GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, account.CurrentBalance)
		_, err = store.Holdings().Get(ctx, userID, models.Stock("TSLA"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("WithinTx commits", func(t *testing.T) {
		userID := "contract-commit-" + suffix
		require.NoError(t, store.Accounts().Create(ctx, models.NewAccount(userID, 1000, base)))

		err := store.WithinTx(ctx, func(ctx context.Context) error {
			_, err := store.Accounts().AdjustBalance(ctx, userID, -100)
			return err
		})
		require.NoError(t, err)

		account, err := store.Accounts().GetByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 900.0, account.CurrentBalance)
	})
}
