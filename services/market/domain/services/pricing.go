// Package services contains the ledger's pure settlement rules.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/money"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

var hundred = decimal.NewFromInt(100)

// Fee returns floor(price * feePercent / 100) for a whole, non-negative price.
func Fee(price decimal.Decimal, feePercent int64) decimal.Decimal {
	q, _ := price.Mul(decimal.NewFromInt(feePercent)).QuoRem(hundred, 0)
	return q
}

// Total returns price plus its fee.
func Total(price decimal.Decimal, feePercent int64) decimal.Decimal {
	return price.Add(Fee(price, feePercent))
}

// ValidatePrice rejects zero, negative, fractional and unstorably large base-unit prices.
func ValidatePrice(price decimal.Decimal) error {
	if err := money.CheckRange(price); err != nil {
		return fmt.Errorf("%w: %w", marketdomain.ErrInvalidPrice, err)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: got %s", marketdomain.ErrInvalidPrice, price)
	}
	if !price.IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number of base units", marketdomain.ErrInvalidPrice, price)
	}
	return nil
}

// CheckPurchase applies the sold and payment checks in that order.
// The item id check happens earlier, when the item is looked up.
func CheckPurchase(item *models.Item, payment decimal.Decimal, feePercent int64) error {
	if item.Sold {
		return fmt.Errorf("%w: item %d", marketdomain.ErrAlreadySold, item.ID)
	}
	if err := money.CheckRange(payment); err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	if total := Total(item.Price, feePercent); payment.LessThan(total) {
		return fmt.Errorf("%w: item %d costs %s, got %s", marketdomain.ErrInsufficientPayment, item.ID, total, payment)
	}
	return nil
}
