package db

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// MarketLedger is the singleton row of market_ledger.
type MarketLedger struct {
	Address      string
	FeeRecipient string
	FeePercent   int64
	ItemCount    int64
}

// MarketItem is a row of market_items.
type MarketItem struct {
	ID            int64
	AssetContract string
	AssetID       int64
	Price         decimal.Decimal
	Seller        string
	Buyer         sql.NullString
	Sold          bool
	ListedAt      time.Time
	SoldAt        sql.NullTime
	SaleRef       sql.NullString
}
