package repositories

import (
	"context"
	"errors"

	"papertrading/src/models"
	"papertrading/src/utils/ids"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

const holdingColumns = `id, user_id, asset_type, asset_id, name, quantity, avg_buy_price, total_cost, created_at, updated_at`

func scanHolding(row pgx.Row) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Asset.Kind, &h.Asset.ID, &h.Name,
		&h.Quantity, &h.AvgBuyPrice, &h.TotalCost, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holdingRepo) ListByUserID(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+holdingColumns+`
		FROM paper_holdings
		WHERE user_id = $1 AND ($2 = '' OR asset_type = $2)
		ORDER BY created_at DESC, id DESC`,
		userID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

func (r *holdingRepo) Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error) {
	h, err := scanHolding(conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+holdingColumns+`
		FROM paper_holdings
		WHERE user_id = $1 AND asset_type = $2 AND asset_id = $3`,
		userID, string(asset.Kind), asset.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return h, err
}

func (r *holdingRepo) Upsert(ctx context.Context, h *models.Holding) error {
	if h.ID == "" {
		h.ID = ids.NewHoldingID()
	}
	return conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO paper_holdings (id, user_id, asset_type, asset_id, name, quantity, avg_buy_price, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, asset_type, asset_id) DO UPDATE SET
			name = EXCLUDED.name,
			quantity = EXCLUDED.quantity,
			avg_buy_price = EXCLUDED.avg_buy_price,
			total_cost = EXCLUDED.total_cost,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		h.ID, h.UserID, string(h.Asset.Kind), h.Asset.ID, h.Name,
		h.Quantity, h.AvgBuyPrice, h.TotalCost, h.CreatedAt, h.UpdatedAt,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *holdingRepo) Delete(ctx context.Context, userID string, asset models.AssetKey) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM paper_holdings WHERE user_id = $1 AND asset_type = $2 AND asset_id = $3`,
		userID, string(asset.Kind), asset.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
