package repositories

import (
	"context"
	"fmt"
	"strings"

	"papertrading/src/models"
	"papertrading/src/utils/ids"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, user_id, type, asset_type, asset_id, name, quantity, price, total_amount, balance_before, balance_after, executed_at`

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = ids.NewTransactionID(t.Timestamp)
	}
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO paper_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.UserID, string(t.Type), string(t.Asset.Kind), t.Asset.ID, t.Name,
		t.Quantity, t.Price, t.TotalAmount, t.BalanceBefore, t.BalanceAfter, t.Timestamp,
	)
	return err
}

func (r *transactionRepo) List(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.AssetKind != "" {
		args = append(args, string(filter.AssetKind))
		where = append(where, fmt.Sprintf("asset_type = $%d", len(args)))
	}
	query := `SELECT ` + transactionColumns + ` FROM paper_transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY executed_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.query(ctx, query, args...)
}

func (r *transactionRepo) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return r.query(ctx, `
		SELECT `+transactionColumns+`
		FROM paper_transactions
		WHERE user_id = $1
		ORDER BY executed_at ASC, id ASC`, userID)
}

func (r *transactionRepo) query(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Asset.Kind, &t.Asset.ID, &t.Name,
		&t.Quantity, &t.Price, &t.TotalAmount, &t.BalanceBefore, &t.BalanceAfter, &t.Timestamp)
	return t, err
}
