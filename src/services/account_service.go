package services

import (
	"context"
	"errors"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/utils"
)

type AccountServiceI interface {
	Initialize(ctx context.Context, userID string) (*models.Account, error)
	GetOrInitialize(ctx context.Context, userID string) (*models.Account, error)
	Get(ctx context.Context, userID string) (*models.Account, error)
	AdjustBalance(ctx context.Context, userID string, amount float64, direction models.BalanceDirection) (*models.Account, error)
	SetTotalValue(ctx context.Context, userID string, totalValue float64) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

type AccountService struct {
	store           repositories.Store
	startingBalance float64
	now             func() time.Time
}

func NewAccountService(store repositories.Store, startingBalance float64) *AccountService {
	return &AccountService{
		store:           store,
		startingBalance: startingBalance,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Initialize creates the account with the configured starting balance.
func (s *AccountService) Initialize(ctx context.Context, userID string) (*models.Account, error) {
	account := models.NewAccount(userID, s.startingBalance, s.now())
	err := s.store.Accounts().Create(ctx, account)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return nil, models.ErrAccountExists
	}
	if err != nil {
		return nil, err
	}
	utils.LoggerFromContext(ctx).WithField("user_id", userID).
		WithField("balance", account.InitialBalance).Info("paper trading account initialized")
	return account, nil
}

// GetOrInitialize returns the existing account, creating it on first use.
func (s *AccountService) GetOrInitialize(ctx context.Context, userID string) (*models.Account, error) {
	account, err := s.Get(ctx, userID)
	if !errors.Is(err, models.ErrAccountNotFound) {
		return account, err
	}
	account, err = s.Initialize(ctx, userID)
	if errors.Is(err, models.ErrAccountExists) {
		// Lost a race with a concurrent first request.
		return s.Get(ctx, userID)
	}
	return account, err
}

func (s *AccountService) Get(ctx context.Context, userID string) (*models.Account, error) {
	account, err := s.store.Accounts().GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrAccountNotFound
	}
	return account, err
}

// AdjustBalance applies amount in the given direction. Sufficiency is the caller's
// responsibility.
func (s *AccountService) AdjustBalance(ctx context.Context, userID string, amount float64, direction models.BalanceDirection) (*models.Account, error) {
	account, err := s.store.Accounts().AdjustBalance(ctx, userID, direction.Signed(amount))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrAccountNotFound
	}
	return account, err
}

func (s *AccountService) SetTotalValue(ctx context.Context, userID string, totalValue float64) error {
	err := s.store.Accounts().SetTotalValue(ctx, userID, totalValue)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ErrAccountNotFound
	}
	return err
}

func (s *AccountService) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.store.Accounts().ListUserIDs(ctx)
}
