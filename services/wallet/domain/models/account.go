package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/identity"
)

// Account is a settlement balance held in integral base units.
// An address that never received funds is an Account with a zero balance.
type Account struct {
	Address   identity.Address
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

// EmptyAccount returns the zero-balance account for addr.
func EmptyAccount(addr identity.Address) *Account {
	return &Account{Address: addr, Balance: decimal.Zero}
}
