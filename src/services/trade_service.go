package services

import (
	"context"
	"errors"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/utils"

	"github.com/sirupsen/logrus"
)

type TradeServiceI interface {
	Buy(ctx context.Context, req TradeRequest) (*TradeResult, error)
	Sell(ctx context.Context, req TradeRequest) (*TradeResult, error)
}

// TradeRequest describes one buy or sell. Name is only used when a buy opens a new
// position.
type TradeRequest struct {
	UserID   string
	Asset    models.AssetKey
	Name     string
	Quantity float64
	Price    float64
}

// TradeResult carries the state left by a trade. Holding is nil after a full
// liquidation.
type TradeResult struct {
	Holding     *models.Holding     `json:"holding"`
	Transaction *models.Transaction `json:"transaction"`
	Account     *models.Account     `json:"account"`
}

type TradeService struct {
	store        repositories.Store
	accounts     AccountServiceI
	holdings     HoldingServiceI
	transactions TransactionServiceI
	now          func() time.Time
}

func NewTradeService(store repositories.Store, accounts AccountServiceI, holdings HoldingServiceI, transactions TransactionServiceI) *TradeService {
	return &TradeService{
		store:        store,
		accounts:     accounts,
		holdings:     holdings,
		transactions: transactions,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func validateTrade(req TradeRequest) error {
	if !models.IsPositiveAmount(req.Quantity) {
		return models.ErrInvalidQuantity
	}
	if !models.IsPositiveAmount(req.Price) {
		return models.ErrInvalidPrice
	}
	return nil
}

// lockAccount reads the account and holds it for the rest of the transaction.
func (s *TradeService) lockAccount(ctx context.Context, userID string) (*models.Account, error) {
	account, err := s.store.Accounts().GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrAccountNotFound
	}
	return account, err
}

// Buy debits the cost, merges the position and logs the trade as one unit.
func (s *TradeService) Buy(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	logger := tradeLogger(ctx, models.TransactionBuy, req)
	if err := validateTrade(req); err != nil {
		logger.WithError(err).Warn("buy rejected")
		return nil, err
	}
	cost := models.MulMoney(req.Quantity, req.Price)

	var result TradeResult
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockAccount(ctx, req.UserID)
		if err != nil {
			return err
		}
		if cost > account.CurrentBalance {
			return models.ErrInsufficientFunds
		}
		balanceBefore := account.CurrentBalance

		account, err = s.accounts.AdjustBalance(ctx, req.UserID, cost, models.BalanceSubtract)
		if err != nil {
			return err
		}
		holding, err := s.holdings.UpsertOnBuy(ctx, req.UserID, req.Asset, req.Name, req.Quantity, req.Price)
		if err != nil {
			return err
		}
		tx := &models.Transaction{
			Type:          models.TransactionBuy,
			Asset:         req.Asset,
			Name:          holding.Name,
			Quantity:      req.Quantity,
			Price:         req.Price,
			TotalAmount:   cost,
			BalanceBefore: balanceBefore,
			BalanceAfter:  account.CurrentBalance,
			Timestamp:     s.now(),
		}
		if err := s.transactions.Append(ctx, req.UserID, tx); err != nil {
			return err
		}
		result = TradeResult{Holding: holding, Transaction: tx, Account: account}
		return nil
	})
	if err != nil {
		logTradeFailure(logger, "buy", err)
		return nil, err
	}
	logger.WithField("balance", result.Account.CurrentBalance).Info("buy executed")
	return &result, nil
}

// Sell reduces the position, credits the proceeds and logs the trade as one unit.
func (s *TradeService) Sell(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	logger := tradeLogger(ctx, models.TransactionSell, req)
	if err := validateTrade(req); err != nil {
		logger.WithError(err).Warn("sell rejected")
		return nil, err
	}
	proceeds := models.MulMoney(req.Quantity, req.Price)

	var result TradeResult
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.lockAccount(ctx, req.UserID)
		if err != nil {
			return err
		}
		balanceBefore := account.CurrentBalance

		name := req.Name
		if existing, err := s.holdings.Get(ctx, req.UserID, req.Asset); err == nil {
			name = existing.Name
		}
		holding, err := s.holdings.ReduceOnSell(ctx, req.UserID, req.Asset, req.Quantity)
		if err != nil {
			return err
		}
		account, err = s.accounts.AdjustBalance(ctx, req.UserID, proceeds, models.BalanceAdd)
		if err != nil {
			return err
		}
		tx := &models.Transaction{
			Type:          models.TransactionSell,
			Asset:         req.Asset,
			Name:          name,
			Quantity:      req.Quantity,
			Price:         req.Price,
			TotalAmount:   proceeds,
			BalanceBefore: balanceBefore,
			BalanceAfter:  account.CurrentBalance,
			Timestamp:     s.now(),
		}
		if err := s.transactions.Append(ctx, req.UserID, tx); err != nil {
			return err
		}
		result = TradeResult{Holding: holding, Transaction: tx, Account: account}
		return nil
	})
	if err != nil {
		logTradeFailure(logger, "sell", err)
		return nil, err
	}
	logger.WithField("balance", result.Account.CurrentBalance).Info("sell executed")
	return &result, nil
}

func tradeLogger(ctx context.Context, kind models.TransactionType, req TradeRequest) *logrus.Entry {
	return utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"side":     string(kind),
		"asset":    req.Asset.String(),
		"quantity": req.Quantity,
		"price":    req.Price,
	})
}

func logTradeFailure(logger *logrus.Entry, side string, err error) {
	if IsLedgerRejection(err) {
		logger.WithError(err).Warn(side + " rejected")
		return
	}
	logger.WithError(err).Error(side + " failed")
}

// IsLedgerRejection reports whether err is a validation failure raised before any
// mutation, as opposed to a persistence failure.
func IsLedgerRejection(err error) bool {
	for _, target := range []error{
		models.ErrInvalidQuantity,
		models.ErrInvalidPrice,
		models.ErrInsufficientFunds,
		models.ErrHoldingNotFound,
		models.ErrInsufficientQuantity,
		models.ErrAccountNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
