package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletBalance is a row of wallet_balances.
type WalletBalance struct {
	Account   string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

const getBalance = `
SELECT account, balance, updated_at
FROM wallet_balances
WHERE account = $1
`

func (q *Queries) GetBalance(ctx context.Context, account string) (WalletBalance, error) {
	var row WalletBalance
	err := q.db.QueryRowContext(ctx, getBalance, account).Scan(&row.Account, &row.Balance, &row.UpdatedAt)
	return row, err
}

const creditBalance = `
INSERT INTO wallet_balances (account, balance, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (account) DO UPDATE
SET balance = wallet_balances.balance + EXCLUDED.balance,
    updated_at = now()
RETURNING balance
`

// CreditBalance upserts the account and adds amount. amount must be non-negative.
func (q *Queries) CreditBalance(ctx context.Context, account string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.db.QueryRowContext(ctx, creditBalance, account, amount).Scan(&balance)
	return balance, err
}

const debitBalance = `
UPDATE wallet_balances
SET balance = balance - $2,
    updated_at = now()
WHERE account = $1 AND balance >= $2
RETURNING balance
`

// DebitBalance subtracts amount only when the balance covers it; sql.ErrNoRows otherwise.
func (q *Queries) DebitBalance(ctx context.Context, account string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.db.QueryRowContext(ctx, debitBalance, account, amount).Scan(&balance)
	return balance, err
}
