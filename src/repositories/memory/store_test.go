package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories/memory"
	"papertrading/src/repositories/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	repotest.RunStoreContract(t, memory.NewStore())
}

func TestMemoryStoreSerialisesTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Accounts().Create(ctx, models.NewAccount("u1", 0, time.Now().UTC())))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context) error {
				if _, err := store.Accounts().GetByUserIDForUpdate(ctx, "u1"); err != nil {
					return err
				}
				_, err := store.Accounts().AdjustBalance(ctx, "u1", 1)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Accounts().GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.CurrentBalance)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	h := models.NewHolding("u1", models.Stock("AAPL"), "Apple", 1, 10, time.Now().UTC())
	require.NoError(t, store.Holdings().Upsert(ctx, h))

	got, err := store.Holdings().Get(ctx, "u1", models.Stock("AAPL"))
	require.NoError(t, err)
	got.Quantity = 99

	again, err := store.Holdings().Get(ctx, "u1", models.Stock("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Quantity)
}
