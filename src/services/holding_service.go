package services

import (
	"context"
	"errors"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
)

type HoldingServiceI interface {
	List(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error)
	Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error)
	UpsertOnBuy(ctx context.Context, userID string, asset models.AssetKey, name string, quantity, price float64) (*models.Holding, error)
	ReduceOnSell(ctx context.Context, userID string, asset models.AssetKey, quantity float64) (*models.Holding, error)
}

type HoldingService struct {
	store repositories.Store
	now   func() time.Time
}

func NewHoldingService(store repositories.Store) *HoldingService {
	return &HoldingService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's open positions, newest first. An empty kind lists both
// stocks and crypto.
func (s *HoldingService) List(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error) {
	return s.store.Holdings().ListByUserID(ctx, userID, kind)
}

func (s *HoldingService) Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error) {
	holding, err := s.store.Holdings().Get(ctx, userID, asset)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrHoldingNotFound
	}
	return holding, err
}

// UpsertOnBuy opens the position or merges the buy into it at weighted average cost.
func (s *HoldingService) UpsertOnBuy(ctx context.Context, userID string, asset models.AssetKey, name string, quantity, price float64) (*models.Holding, error) {
	if !models.IsPositiveAmount(quantity) {
		return nil, models.ErrInvalidQuantity
	}
	if !models.IsPositiveAmount(price) {
		return nil, models.ErrInvalidPrice
	}
	now := s.now()

	holding, err := s.store.Holdings().Get(ctx, userID, asset)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		holding = models.NewHolding(userID, asset, name, quantity, price, now)
	case err != nil:
		return nil, err
	default:
		holding.ApplyBuy(quantity, price, now)
	}

	if err := s.store.Holdings().Upsert(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}

// ReduceOnSell removes quantity from the position. It returns nil when the position
// was fully liquidated and deleted.
func (s *HoldingService) ReduceOnSell(ctx context.Context, userID string, asset models.AssetKey, quantity float64) (*models.Holding, error) {
	if !models.IsPositiveAmount(quantity) {
		return nil, models.ErrInvalidQuantity
	}
	holding, err := s.store.Holdings().Get(ctx, userID, asset)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}

	closed, err := holding.ApplySell(quantity, s.now())
	if err != nil {
		return nil, err
	}
	if closed {
		if err := s.store.Holdings().Delete(ctx, userID, asset); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := s.store.Holdings().Upsert(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}
