package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/services/wallet/domain/models"
)

// BalanceRepository is the persistence interface for account balances.
// Implementations take part in the transaction carried by ctx, if any.
type BalanceRepository interface {
	// Get returns the account, or an empty account when addr never held funds.
	Get(ctx context.Context, addr identity.Address) (*models.Account, error)

	// Credit adds amount to addr's balance and returns the new balance.
	Credit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error)

	// Debit subtracts amount from addr's balance and returns the new balance.
	// Returns ErrInsufficientFunds, leaving the balance unchanged, when it would go negative.
	Debit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error)
}
