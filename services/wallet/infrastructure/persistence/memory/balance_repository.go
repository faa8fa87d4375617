// Package memory implements the wallet repositories on a shared memtx.World.
package memory

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	walletdomain "github.com/omnik-labs/marketplace/services/wallet/domain"
	"github.com/omnik-labs/marketplace/services/wallet/domain/models"
)

const balancesTable = "wallet_balances"

type balances map[identity.Address]models.Account

func (b balances) Clone() memtx.Table { return maps.Clone(b) }

// BalanceRepository implements repositories.BalanceRepository in memory.
type BalanceRepository struct {
	world *memtx.World
	now   func() time.Time
}

// NewBalanceRepository registers the balances table on world.
func NewBalanceRepository(world *memtx.World) *BalanceRepository {
	world.Register(balancesTable, balances{})
	return &BalanceRepository{world: world, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the account, or an empty one.
func (r *BalanceRepository) Get(ctx context.Context, addr identity.Address) (*models.Account, error) {
	acct := models.EmptyAccount(addr)
	err := memtx.View(ctx, r.world, balancesTable, func(b balances) error {
		if a, ok := b[addr]; ok {
			*acct = a
		}
		return nil
	})
	return acct, err
}

// Credit adds amount to addr.
func (r *BalanceRepository) Credit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := memtx.Update(ctx, r.world, balancesTable, func(b balances) error {
		a, ok := b[addr]
		if !ok {
			a = *models.EmptyAccount(addr)
		}
		a.Balance = a.Balance.Add(amount)
		a.UpdatedAt = r.now()
		b[addr] = a
		out = a.Balance
		return nil
	})
	return out, err
}

// Debit subtracts amount from addr.
func (r *BalanceRepository) Debit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := memtx.Update(ctx, r.world, balancesTable, func(b balances) error {
		a, ok := b[addr]
		if !ok {
			a = *models.EmptyAccount(addr)
		}
		if a.Balance.LessThan(amount) {
			return fmt.Errorf("%w: %s holds %s, needs %s", walletdomain.ErrInsufficientFunds, addr, a.Balance, amount)
		}
		a.Balance = a.Balance.Sub(amount)
		a.UpdatedAt = r.now()
		b[addr] = a
		out = a.Balance
		return nil
	})
	return out, err
}
