package models

import "errors"

// Ledger errors. Every one of them is raised before any state is mutated.
var (
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrHoldingNotFound      = errors.New("holding not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrAccountNotFound      = errors.New("paper trading account not found")
	ErrAccountExists        = errors.New("paper trading account already exists")
)

// ErrQuoteUnavailable is returned when no usable price could be fetched for an asset.
var ErrQuoteUnavailable = errors.New("quote unavailable")
