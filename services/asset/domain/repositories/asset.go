package repositories

import (
	"context"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

// AssetRepository is the persistence interface for collections, tokens and
// operator approvals. Implementations take part in the transaction carried by ctx.
type AssetRepository interface {
	// EnsureCollection records c if its contract is not known yet. Idempotent.
	EnsureCollection(ctx context.Context, c models.Collection) error

	// NextTokenID increments the collection's token counter and returns the new value.
	NextTokenID(ctx context.Context, contract identity.Address) (uint64, error)

	// TokenCount returns how many tokens the collection has minted; zero when unknown.
	TokenCount(ctx context.Context, contract identity.Address) (uint64, error)

	Insert(ctx context.Context, a *models.Asset) error

	// Get returns ErrAssetNotFound when the token does not exist.
	Get(ctx context.Context, ref models.Ref) (*models.Asset, error)

	// GetForUpdate is Get with the token locked until the transaction ends.
	GetForUpdate(ctx context.Context, ref models.Ref) (*models.Asset, error)

	SetOwner(ctx context.Context, ref models.Ref, owner identity.Address) error

	// CountOwned returns the number of tokens of contract held by owner.
	CountOwned(ctx context.Context, contract, owner identity.Address) (int64, error)

	SetApproval(ctx context.Context, contract, owner, operator identity.Address, approved bool) error
	IsApproved(ctx context.Context, contract, owner, operator identity.Address) (bool, error)
}
