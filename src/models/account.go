package models

import "time"

type Account struct {
	UserID         string    `json:"userId" db:"user_id" bson:"userId"`
	InitialBalance float64   `json:"initialBalance" db:"initial_balance" bson:"initialBalance"`
	CurrentBalance float64   `json:"currentBalance" db:"current_balance" bson:"currentBalance"`
	TotalValue     float64   `json:"totalValue" db:"total_value" bson:"totalValue"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

func NewAccount(userID string, startingBalance float64, now time.Time) *Account {
	return &Account{
		UserID:         userID,
		InitialBalance: startingBalance,
		CurrentBalance: startingBalance,
		TotalValue:     startingBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type BalanceDirection string

const (
	BalanceAdd      BalanceDirection = "add"
	BalanceSubtract BalanceDirection = "subtract"
)

// Signed returns amount with the sign implied by the direction.
func (d BalanceDirection) Signed(amount float64) float64 {
	if d == BalanceSubtract {
		return -amount
	}
	return amount
}
