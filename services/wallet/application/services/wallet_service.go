package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/services/wallet/domain/models"
	"github.com/omnik-labs/marketplace/services/wallet/domain/repositories"
	domainsvcs "github.com/omnik-labs/marketplace/services/wallet/domain/services"
)

// WalletService moves base units between accounts. Credit and Debit join the
// transaction carried by ctx, which is how the ledger settles a purchase atomically.
type WalletService struct {
	tx   database.Transactor
	repo repositories.BalanceRepository
	log  logger.Logger
}

// NewWalletService returns a WalletService over repo.
func NewWalletService(tx database.Transactor, repo repositories.BalanceRepository, log logger.Logger) *WalletService {
	return &WalletService{tx: tx, repo: repo, log: log}
}

// Balance returns the account for addr; unknown addresses hold zero.
func (s *WalletService) Balance(ctx context.Context, addr identity.Address) (*models.Account, error) {
	acct, err := s.repo.Get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return acct, nil
}

// Deposit mints amount into addr. Used by genesis seeding and the dev faucet.
func (s *WalletService) Deposit(ctx context.Context, addr identity.Address, amount decimal.Decimal) (*models.Account, error) {
	if err := domainsvcs.ValidateDeposit(amount); err != nil {
		return nil, err
	}
	var acct *models.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.repo.Credit(ctx, addr, amount)
		if err != nil {
			return err
		}
		acct = &models.Account{Address: addr, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	s.log.InfoContext(ctx, "deposit", "account", addr, "amount", amount.String(), "balance", acct.Balance.String())
	return acct, nil
}

// Credit adds amount to addr. Zero is a no-op.
func (s *WalletService) Credit(ctx context.Context, addr identity.Address, amount decimal.Decimal) error {
	if err := domainsvcs.ValidateTransferAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	if _, err := s.repo.Credit(ctx, addr, amount); err != nil {
		return fmt.Errorf("credit %s: %w", addr, err)
	}
	return nil
}

// Debit subtracts amount from addr, failing with ErrInsufficientFunds when the
// balance cannot cover it. Zero is a no-op.
func (s *WalletService) Debit(ctx context.Context, addr identity.Address, amount decimal.Decimal) error {
	if err := domainsvcs.ValidateTransferAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	if _, err := s.repo.Debit(ctx, addr, amount); err != nil {
		return fmt.Errorf("debit %s: %w", addr, err)
	}
	return nil
}
