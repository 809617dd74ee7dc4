package repositories

import (
	"context"
	"errors"

	"papertrading/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByUserID(ctx context.Context, userID string) (*models.Account, error)
	// GetByUserIDForUpdate reads the account and, inside WithinTx, holds it against
	// concurrent trades of the same user until the transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error)
	AdjustBalance(ctx context.Context, userID string, delta float64) (*models.Account, error)
	SetTotalValue(ctx context.Context, userID string, totalValue float64) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

type HoldingRepository interface {
	// ListByUserID returns newest-created first. An empty kind lists every asset kind.
	ListByUserID(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error)
	Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error)
	Upsert(ctx context.Context, h *models.Holding) error
	Delete(ctx context.Context, userID string, asset models.AssetKey) error
}

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	// List returns newest first. A zero filter.Limit returns every match.
	List(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error)
	// History returns every buy and sell of the user, oldest first.
	History(ctx context.Context, userID string) ([]models.Transaction, error)
}

// Store groups the ledger repositories behind one unit of work.
type Store interface {
	Accounts() AccountRepository
	Holdings() HoldingRepository
	Transactions() TransactionRepository
	// WithinTx runs fn so that every repository call made with the context it
	// receives commits or rolls back together. Nested calls join the outer one.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close(ctx context.Context) error
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn returns the transaction bound to ctx, falling back to the pool.
func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

type postgresStore struct {
	db           *pgxpool.Pool
	accounts     AccountRepository
	holdings     HoldingRepository
	transactions TransactionRepository
}

func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{
		db:           db,
		accounts:     NewAccountRepository(db),
		holdings:     NewHoldingRepository(db),
		transactions: NewTransactionRepository(db),
	}
}

func (s *postgresStore) Accounts() AccountRepository         { return s.accounts }
func (s *postgresStore) Holdings() HoldingRepository         { return s.holdings }
func (s *postgresStore) Transactions() TransactionRepository { return s.transactions }

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *postgresStore) Close(_ context.Context) error {
	s.db.Close()
	return nil
}
