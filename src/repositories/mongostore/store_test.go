package mongostore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"papertrading/src/repositories/mongostore"
	"papertrading/src/repositories/repotest"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Needs a replica set, e.g. TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	database := fmt.Sprintf("papertrading_test_%d", time.Now().UnixNano())
	store := mongostore.NewStore(client, database, mongostore.CollectionNames{
		Accounts:       "accounts",
		StockHoldings:  "stock_holdings",
		CryptoHoldings: "crypto_holdings",
		Transactions:   "transactions",
	})
	t.Cleanup(func() {
		_ = client.Database(database).Drop(context.Background())
		_ = store.Close(context.Background())
	})
	require.NoError(t, store.EnsureIndexes(ctx))

	repotest.RunStoreContract(t, store)
}
