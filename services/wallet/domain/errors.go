package domain

import "errors"

// Sentinel errors for the wallet domain. Use errors.Is() to check these.
var (
	// ErrInsufficientFunds indicates a debit larger than the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount indicates a negative or fractional base-unit amount.
	ErrInvalidAmount = errors.New("invalid amount")
)
