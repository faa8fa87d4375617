package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
	"github.com/omnik-labs/marketplace/services/asset/infrastructure/persistence/postgres/db"
)

const pgForeignKeyViolation = "23503"

// AssetRepository implements repositories.AssetRepository against PostgreSQL.
type AssetRepository struct {
	db *database.Database
}

// NewAssetRepository returns an AssetRepository on the shared pool.
func NewAssetRepository(database *database.Database) *AssetRepository {
	return &AssetRepository{db: database}
}

func (r *AssetRepository) q(ctx context.Context) *db.Queries {
	return db.New(r.db.Conn(ctx))
}

func (r *AssetRepository) EnsureCollection(ctx context.Context, c models.Collection) error {
	if err := r.q(ctx).EnsureCollection(ctx, c.Contract.String(), c.Name, c.Symbol); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

func (r *AssetRepository) NextTokenID(ctx context.Context, contract identity.Address) (uint64, error) {
	id, err := r.q(ctx).NextTokenID(ctx, contract.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", assetdomain.ErrCollectionNotFound, contract)
		}
		return 0, fmt.Errorf("next token id: %w", err)
	}
	return uint64(id), nil
}

func (r *AssetRepository) TokenCount(ctx context.Context, contract identity.Address) (uint64, error) {
	n, err := r.q(ctx).TokenCount(ctx, contract.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("token count: %w", err)
	}
	return uint64(n), nil
}

func (r *AssetRepository) Insert(ctx context.Context, a *models.Asset) error {
	tokenID, err := toRowID(a.TokenID)
	if err != nil {
		return err
	}
	if err := r.q(ctx).InsertAsset(ctx, db.InsertAssetParams{
		Contract: a.Contract.String(),
		TokenID:  tokenID,
		Owner:    a.Owner.String(),
		TokenURI: a.TokenURI,
		MintedAt: a.MintedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: %s", assetdomain.ErrCollectionNotFound, a.Contract)
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *AssetRepository) Get(ctx context.Context, ref models.Ref) (*models.Asset, error) {
	return r.get(ctx, ref, false)
}

func (r *AssetRepository) GetForUpdate(ctx context.Context, ref models.Ref) (*models.Asset, error) {
	return r.get(ctx, ref, true)
}

func (r *AssetRepository) get(ctx context.Context, ref models.Ref, lock bool) (*models.Asset, error) {
	tokenID, err := toRowID(ref.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
	}
	q := r.q(ctx)
	var row db.Asset
	if lock {
		row, err = q.GetAssetForUpdate(ctx, ref.Contract.String(), tokenID)
	} else {
		row, err = q.GetAsset(ctx, ref.Contract.String(), tokenID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
		}
		return nil, fmt.Errorf("query asset: %w", err)
	}
	return rowToAsset(row), nil
}

func (r *AssetRepository) SetOwner(ctx context.Context, ref models.Ref, owner identity.Address) error {
	tokenID, err := toRowID(ref.TokenID)
	if err != nil {
		return fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
	}
	n, err := r.q(ctx).SetOwner(ctx, ref.Contract.String(), tokenID, owner.String())
	if err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
	}
	return nil
}

func (r *AssetRepository) CountOwned(ctx context.Context, contract, owner identity.Address) (int64, error) {
	n, err := r.q(ctx).CountOwned(ctx, contract.String(), owner.String())
	if err != nil {
		return 0, fmt.Errorf("count owned: %w", err)
	}
	return n, nil
}

func (r *AssetRepository) SetApproval(ctx context.Context, contract, owner, operator identity.Address, approved bool) error {
	q := r.q(ctx)
	var err error
	if approved {
		err = q.GrantApproval(ctx, contract.String(), owner.String(), operator.String())
	} else {
		err = q.RevokeApproval(ctx, contract.String(), owner.String(), operator.String())
	}
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

func (r *AssetRepository) IsApproved(ctx context.Context, contract, owner, operator identity.Address) (bool, error) {
	ok, err := r.q(ctx).IsApproved(ctx, contract.String(), owner.String(), operator.String())
	if err != nil {
		return false, fmt.Errorf("is approved: %w", err)
	}
	return ok, nil
}

// toRowID guards the BIGINT column; token ids above MaxInt64 cannot exist.
func toRowID(id uint64) (int64, error) {
	if id > math.MaxInt64 {
		return 0, fmt.Errorf("token id %d out of range", id)
	}
	return int64(id), nil
}

func rowToAsset(row db.Asset) *models.Asset {
	return &models.Asset{
		Contract: identity.Address(row.Contract),
		TokenID:  uint64(row.TokenID),
		Owner:    identity.Address(row.Owner),
		TokenURI: row.TokenURI,
		MintedAt: row.MintedAt,
	}
}
