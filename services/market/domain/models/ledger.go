package models

import (
	"fmt"

	"github.com/omnik-labs/marketplace/pkg/identity"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
)

// LedgerConfig is fixed when the ledger is created.
type LedgerConfig struct {
	// Address is the custody account that holds listed assets and retained overpayments.
	Address      identity.Address
	FeeRecipient identity.Address
	FeePercent   int64
}

// Validate checks the fee range and that both accounts are set.
func (c LedgerConfig) Validate() error {
	if c.FeePercent < 0 || c.FeePercent > 100 {
		return fmt.Errorf("%w: got %d", marketdomain.ErrInvalidFeePercent, c.FeePercent)
	}
	if c.Address.IsZero() {
		return fmt.Errorf("ledger address: %w", identity.ErrInvalidAddress)
	}
	if c.FeeRecipient.IsZero() {
		return fmt.Errorf("fee recipient: %w", identity.ErrInvalidAddress)
	}
	return nil
}
