package database

import (
	"context"
	"fmt"

	"papertrading/src/config"
	"papertrading/src/repositories"
	"papertrading/src/repositories/memory"
	"papertrading/src/repositories/mongostore"
)

// NewStore opens the ledger store selected by databases.driver.
func NewStore(ctx context.Context, cfg *config.Config) (repositories.Store, error) {
	switch cfg.Databases.Driver {
	case config.DriverPostgres, "":
		pool, err := SetupDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewPostgresStore(pool), nil
	case config.DriverMongo:
		client, err := SetupMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		names := cfg.Databases.Mongo.Collections
		store := mongostore.NewStore(client, cfg.Databases.Mongo.Database, mongostore.CollectionNames{
			Accounts:       names.Accounts,
			StockHoldings:  names.StockHoldings,
			CryptoHoldings: names.CryptoHoldings,
			Transactions:   names.Transactions,
		})
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Databases.Driver)
}
