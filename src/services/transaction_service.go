package services

import (
	"context"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/utils/ids"
)

type TransactionServiceI interface {
	Append(ctx context.Context, userID string, tx *models.Transaction) error
	Query(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error)
	History(ctx context.Context, userID string) ([]models.Transaction, error)
}

type TransactionService struct {
	store        repositories.Store
	defaultLimit int
	maxLimit     int
}

func NewTransactionService(store repositories.Store, defaultLimit, maxLimit int) *TransactionService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &TransactionService{store: store, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Append writes tx to the log. The id and timestamp are assigned when missing.
func (s *TransactionService) Append(ctx context.Context, userID string, tx *models.Transaction) error {
	tx.UserID = userID
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	if tx.ID == "" {
		tx.ID = ids.NewTransactionID(tx.Timestamp)
	}
	return s.store.Transactions().Create(ctx, tx)
}

// Query returns matching transactions newest first, bounded by the configured limits.
func (s *TransactionService) Query(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	filter.Limit = s.limit(filter.Limit)
	return s.store.Transactions().List(ctx, userID, filter)
}

// History returns the complete log oldest first.
func (s *TransactionService) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.store.Transactions().History(ctx, userID)
}

func (s *TransactionService) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultLimit
	case requested > s.maxLimit:
		return s.maxLimit
	}
	return requested
}
