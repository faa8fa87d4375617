package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const ensureLedger = `
INSERT INTO market_ledger (id, address, fee_recipient, fee_percent)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO NOTHING
`

func (q *Queries) EnsureLedger(ctx context.Context, address, feeRecipient string, feePercent int64) error {
	_, err := q.db.ExecContext(ctx, ensureLedger, address, feeRecipient, feePercent)
	return err
}

const getLedger = `
SELECT address, fee_recipient, fee_percent, item_count
FROM market_ledger
WHERE id = 1
`

func (q *Queries) GetLedger(ctx context.Context) (MarketLedger, error) {
	var l MarketLedger
	err := q.db.QueryRowContext(ctx, getLedger).Scan(&l.Address, &l.FeeRecipient, &l.FeePercent, &l.ItemCount)
	return l, err
}

const nextItemID = `
UPDATE market_ledger
SET item_count = item_count + 1
WHERE id = 1
RETURNING item_count
`

// NextItemID row-locks the ledger until the transaction ends, serializing listings.
func (q *Queries) NextItemID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, nextItemID).Scan(&id)
	return id, err
}

// InsertItemParams holds the columns of a new listing.
type InsertItemParams struct {
	ID            int64
	AssetContract string
	AssetID       int64
	Price         decimal.Decimal
	Seller        string
	ListedAt      time.Time
}

const insertItem = `
INSERT INTO market_items (id, asset_contract, asset_id, price, seller, listed_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (q *Queries) InsertItem(ctx context.Context, arg InsertItemParams) error {
	_, err := q.db.ExecContext(ctx, insertItem,
		arg.ID, arg.AssetContract, arg.AssetID, arg.Price, arg.Seller, arg.ListedAt)
	return err
}

const itemColumns = `id, asset_contract, asset_id, price, seller, buyer, sold, listed_at, sold_at, sale_ref`

const getItem = `
SELECT ` + itemColumns + `
FROM market_items
WHERE id = $1
`

func (q *Queries) GetItem(ctx context.Context, id int64) (MarketItem, error) {
	return scanItem(q.db.QueryRowContext(ctx, getItem, id))
}

const getItemForUpdate = getItem + `FOR UPDATE
`

func (q *Queries) GetItemForUpdate(ctx context.Context, id int64) (MarketItem, error) {
	return scanItem(q.db.QueryRowContext(ctx, getItemForUpdate, id))
}

// MarkItemSoldParams holds the sale columns.
type MarkItemSoldParams struct {
	ID      int64
	Buyer   string
	SoldAt  time.Time
	SaleRef string
}

const markItemSold = `
UPDATE market_items
SET sold = true, buyer = $2, sold_at = $3, sale_ref = NULLIF($4, '')
WHERE id = $1 AND NOT sold
`

// MarkItemSold returns the number of rows updated; zero means missing or already sold.
func (q *Queries) MarkItemSold(ctx context.Context, arg MarkItemSoldParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, markItemSold, arg.ID, arg.Buyer, arg.SoldAt, arg.SaleRef)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListItemsParams selects a page of listings.
type ListItemsParams struct {
	UnsoldOnly bool
	Limit      int32
	Offset     int32
}

const listItems = `
SELECT ` + itemColumns + `
FROM market_items
WHERE NOT ($1 AND sold)
ORDER BY id
LIMIT $2 OFFSET $3
`

func (q *Queries) ListItems(ctx context.Context, arg ListItemsParams) ([]MarketItem, error) {
	rows, err := q.db.QueryContext(ctx, listItems, arg.UnsoldOnly, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MarketItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const countItems = `
SELECT count(*) FROM market_items WHERE NOT ($1 AND sold)
`

func (q *Queries) CountItems(ctx context.Context, unsoldOnly bool) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countItems, unsoldOnly).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (MarketItem, error) {
	var i MarketItem
	err := row.Scan(&i.ID, &i.AssetContract, &i.AssetID, &i.Price, &i.Seller, &i.Buyer, &i.Sold, &i.ListedAt, &i.SoldAt, &i.SaleRef)
	return i, err
}
