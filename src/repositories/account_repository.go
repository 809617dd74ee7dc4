package repositories

import (
	"context"
	"errors"
	"time"

	"papertrading/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = `user_id, initial_balance, current_balance, total_value, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.UserID, &a.InitialBalance, &a.CurrentBalance, &a.TotalValue, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, a *models.Account) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO paper_accounts (user_id, initial_balance, current_balance, total_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at`,
		a.UserID, a.InitialBalance, a.CurrentBalance, a.TotalValue, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyExists
	}
	return err
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	return scanAccount(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM paper_accounts WHERE user_id = $1`, userID))
}

func (r *accountRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	return scanAccount(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM paper_accounts WHERE user_id = $1 FOR UPDATE`, userID))
}

func (r *accountRepo) AdjustBalance(ctx context.Context, userID string, delta float64) (*models.Account, error) {
	return scanAccount(conn(ctx, r.db).QueryRow(ctx, `
		UPDATE paper_accounts
		SET current_balance = current_balance + $2, updated_at = $3
		WHERE user_id = $1
		RETURNING `+accountColumns,
		userID, delta, time.Now().UTC()))
}

func (r *accountRepo) SetTotalValue(ctx context.Context, userID string, totalValue float64) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE paper_accounts SET total_value = $2, updated_at = $3 WHERE user_id = $1`,
		userID, totalValue, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT user_id FROM paper_accounts ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
