package models

import (
	"fmt"
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionBuy:
		return TransactionBuy, nil
	case TransactionSell:
		return TransactionSell, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is one executed trade. Rows are written once and never updated.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"userId" db:"user_id"`
	Type          TransactionType `json:"type" db:"type"`
	Asset         AssetKey        `json:"asset"`
	Name          string          `json:"name" db:"name"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	Price         float64         `json:"price" db:"price"`
	TotalAmount   float64         `json:"totalAmount" db:"total_amount"`
	BalanceBefore float64         `json:"balanceBefore" db:"balance_before"`
	BalanceAfter  float64         `json:"balanceAfter" db:"balance_after"`
	Timestamp     time.Time       `json:"timestamp" db:"executed_at"`
}

// TransactionFilter narrows a transaction log query. A zero Limit means no limit at
// the repository level; the service layer applies its own default.
type TransactionFilter struct {
	Type      TransactionType
	AssetKind AssetKind
	Limit     int
}
