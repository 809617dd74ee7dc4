package services

import (
	"context"

	"papertrading/src/models"
	"papertrading/src/utils"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

type ValuationServiceI interface {
	Valuate(ctx context.Context, userID string) (*models.Valuation, error)
	Refresh(ctx context.Context, userID string) (*models.Valuation, error)
	RefreshAll(ctx context.Context) (RefreshSummary, error)
}

type RefreshSummary struct {
	Accounts int `json:"accounts"`
	Failed   int `json:"failed"`
}

type ValuationService struct {
	accounts    AccountServiceI
	holdings    HoldingServiceI
	quoter      Quoter
	concurrency int
}

func NewValuationService(accounts AccountServiceI, holdings HoldingServiceI, quoter Quoter, concurrency int) *ValuationService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ValuationService{accounts: accounts, holdings: holdings, quoter: quoter, concurrency: concurrency}
}

// Valuate marks every open position to market. Quotes are fetched concurrently and a
// failed quote leaves the position at cost.
func (s *ValuationService) Valuate(ctx context.Context, userID string) (*models.Valuation, error) {
	account, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.holdings.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	positions := make([]models.Position, len(holdings))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i := range holdings {
		i := i
		p.Go(func() {
			positions[i] = s.position(ctx, holdings[i])
		})
	}
	p.Wait()

	valuation := &models.Valuation{
		UserID:    userID,
		Cash:      account.CurrentBalance,
		Positions: positions,
	}
	for _, pos := range positions {
		valuation.HoldingsValue = models.AddMoney(valuation.HoldingsValue, pos.MarketValue)
		valuation.TotalCost = models.AddMoney(valuation.TotalCost, pos.TotalCost)
	}
	valuation.TotalValue = models.AddMoney(valuation.Cash, valuation.HoldingsValue)
	valuation.UnrealizedGainLoss = models.SubMoney(valuation.HoldingsValue, valuation.TotalCost)
	valuation.UnrealizedGainLossPercent = models.DivMoney(valuation.UnrealizedGainLoss, valuation.TotalCost) * 100
	return valuation, nil
}

func (s *ValuationService) position(ctx context.Context, h models.Holding) models.Position {
	pos := models.Position{Holding: h}
	price, err := s.quoter.GetQuote(ctx, h.Asset)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).WithField("asset", h.Asset.String()).
			Warn("valuing position at cost")
		pos.Stale = true
		price = h.AvgBuyPrice
	}
	pos.CurrentPrice = price
	pos.MarketValue = models.MulMoney(h.Quantity, price)
	pos.GainLoss = models.SubMoney(pos.MarketValue, h.TotalCost)
	pos.GainLossPercent = models.DivMoney(pos.GainLoss, h.TotalCost) * 100
	return pos
}

// Refresh values the account and stores the result as its total value.
func (s *ValuationService) Refresh(ctx context.Context, userID string) (*models.Valuation, error) {
	valuation, err := s.Valuate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetTotalValue(ctx, userID, valuation.TotalValue); err != nil {
		return nil, err
	}
	return valuation, nil
}

// RefreshAll refreshes every account. Failures are logged and counted; only listing
// the accounts can fail the run.
func (s *ValuationService) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	logger := utils.LoggerFromContext(ctx)
	userIDs, err := s.accounts.ListUserIDs(ctx)
	if err != nil {
		return RefreshSummary{}, err
	}

	summary := RefreshSummary{Accounts: len(userIDs)}
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		valuation, err := s.Refresh(ctx, userID)
		if err != nil {
			summary.Failed++
			logger.WithError(err).WithField("user_id", userID).Error("valuation refresh failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"total_value": valuation.TotalValue,
		}).Debug("valuation refreshed")
	}
	logger.WithFields(logrus.Fields{"accounts": summary.Accounts, "failed": summary.Failed}).Info("valuation refresh finished")
	return summary, nil
}
