// Package services holds the wallet's stateless amount rules.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/money"
	walletdomain "github.com/omnik-labs/marketplace/services/wallet/domain"
)

// ValidateTransferAmount accepts any non-negative whole number of base units.
// Zero is allowed so a 0% fee can flow through the same code path.
func ValidateTransferAmount(amount decimal.Decimal) error {
	if err := money.CheckRange(amount); err != nil {
		return fmt.Errorf("%w: %w", walletdomain.ErrInvalidAmount, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", walletdomain.ErrInvalidAmount, amount)
	}
	if !amount.IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number of base units", walletdomain.ErrInvalidAmount, amount)
	}
	return nil
}

// ValidateDeposit additionally requires a strictly positive amount.
func ValidateDeposit(amount decimal.Decimal) error {
	if err := ValidateTransferAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: deposit must be positive", walletdomain.ErrInvalidAmount)
	}
	return nil
}
