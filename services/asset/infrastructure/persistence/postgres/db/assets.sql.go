package db

import (
	"context"
	"time"
)

const ensureCollection = `
INSERT INTO asset_collections (contract, name, symbol)
VALUES ($1, $2, $3)
ON CONFLICT (contract) DO NOTHING
`

func (q *Queries) EnsureCollection(ctx context.Context, contract, name, symbol string) error {
	_, err := q.db.ExecContext(ctx, ensureCollection, contract, name, symbol)
	return err
}

const nextTokenID = `
UPDATE asset_collections
SET token_count = token_count + 1
WHERE contract = $1
RETURNING token_count
`

func (q *Queries) NextTokenID(ctx context.Context, contract string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, nextTokenID, contract).Scan(&id)
	return id, err
}

const tokenCount = `
SELECT token_count FROM asset_collections WHERE contract = $1
`

func (q *Queries) TokenCount(ctx context.Context, contract string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, tokenCount, contract).Scan(&n)
	return n, err
}

// InsertAssetParams holds the columns of a newly minted token.
type InsertAssetParams struct {
	Contract string
	TokenID  int64
	Owner    string
	TokenURI string
	MintedAt time.Time
}

const insertAsset = `
INSERT INTO assets (contract, token_id, owner, token_uri, minted_at)
VALUES ($1, $2, $3, $4, $5)
`

func (q *Queries) InsertAsset(ctx context.Context, arg InsertAssetParams) error {
	_, err := q.db.ExecContext(ctx, insertAsset, arg.Contract, arg.TokenID, arg.Owner, arg.TokenURI, arg.MintedAt)
	return err
}

const getAsset = `
SELECT contract, token_id, owner, token_uri, minted_at
FROM assets
WHERE contract = $1 AND token_id = $2
`

func (q *Queries) GetAsset(ctx context.Context, contract string, tokenID int64) (Asset, error) {
	return q.scanAsset(ctx, getAsset, contract, tokenID)
}

const getAssetForUpdate = getAsset + `FOR UPDATE
`

func (q *Queries) GetAssetForUpdate(ctx context.Context, contract string, tokenID int64) (Asset, error) {
	return q.scanAsset(ctx, getAssetForUpdate, contract, tokenID)
}

func (q *Queries) scanAsset(ctx context.Context, query, contract string, tokenID int64) (Asset, error) {
	var a Asset
	err := q.db.QueryRowContext(ctx, query, contract, tokenID).
		Scan(&a.Contract, &a.TokenID, &a.Owner, &a.TokenURI, &a.MintedAt)
	return a, err
}

const setOwner = `
UPDATE assets SET owner = $3 WHERE contract = $1 AND token_id = $2
`

// SetOwner returns the number of rows updated.
func (q *Queries) SetOwner(ctx context.Context, contract string, tokenID int64, owner string) (int64, error) {
	res, err := q.db.ExecContext(ctx, setOwner, contract, tokenID, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countOwned = `
SELECT count(*) FROM assets WHERE contract = $1 AND owner = $2
`

func (q *Queries) CountOwned(ctx context.Context, contract, owner string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countOwned, contract, owner).Scan(&n)
	return n, err
}

const grantApproval = `
INSERT INTO asset_operator_approvals (contract, owner, operator)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
`

func (q *Queries) GrantApproval(ctx context.Context, contract, owner, operator string) error {
	_, err := q.db.ExecContext(ctx, grantApproval, contract, owner, operator)
	return err
}

const revokeApproval = `
DELETE FROM asset_operator_approvals
WHERE contract = $1 AND owner = $2 AND operator = $3
`

func (q *Queries) RevokeApproval(ctx context.Context, contract, owner, operator string) error {
	_, err := q.db.ExecContext(ctx, revokeApproval, contract, owner, operator)
	return err
}

const isApproved = `
SELECT EXISTS (
    SELECT 1 FROM asset_operator_approvals
    WHERE contract = $1 AND owner = $2 AND operator = $3
)
`

func (q *Queries) IsApproved(ctx context.Context, contract, owner, operator string) (bool, error) {
	var ok bool
	err := q.db.QueryRowContext(ctx, isApproved, contract, owner, operator).Scan(&ok)
	return ok, err
}
