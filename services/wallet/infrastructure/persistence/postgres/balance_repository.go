package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	walletdomain "github.com/omnik-labs/marketplace/services/wallet/domain"
	"github.com/omnik-labs/marketplace/services/wallet/domain/models"
	"github.com/omnik-labs/marketplace/services/wallet/infrastructure/persistence/postgres/db"
)

// BalanceRepository implements repositories.BalanceRepository against PostgreSQL.
type BalanceRepository struct {
	db *database.Database
}

// NewBalanceRepository returns a BalanceRepository on the shared pool.
func NewBalanceRepository(database *database.Database) *BalanceRepository {
	return &BalanceRepository{db: database}
}

// Get returns the account, or an empty one when the address has no row.
func (r *BalanceRepository) Get(ctx context.Context, addr identity.Address) (*models.Account, error) {
	row, err := db.New(r.db.Conn(ctx)).GetBalance(ctx, addr.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmptyAccount(addr), nil
		}
		return nil, fmt.Errorf("query balance: %w", err)
	}
	return &models.Account{Address: addr, Balance: row.Balance, UpdatedAt: row.UpdatedAt}, nil
}

// Credit adds amount to addr, creating the row on first credit.
func (r *BalanceRepository) Credit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, err := db.New(r.db.Conn(ctx)).CreditBalance(ctx, addr.String(), amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}
	return balance, nil
}

// Debit subtracts amount from addr; a missing row or short balance is ErrInsufficientFunds.
func (r *BalanceRepository) Debit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, err := db.New(r.db.Conn(ctx)).DebitBalance(ctx, addr.String(), amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: %s cannot cover %s", walletdomain.ErrInsufficientFunds, addr, amount)
		}
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}
	return balance, nil
}
