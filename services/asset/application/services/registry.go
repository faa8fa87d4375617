package services

import (
	"context"
	"fmt"
	"time"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
	"github.com/omnik-labs/marketplace/services/asset/domain/repositories"
	domainsvcs "github.com/omnik-labs/marketplace/services/asset/domain/services"
)

// Registry is the non-fungible token registry for one collection. It mints
// tokens, tracks ownership and operator approvals, and performs guarded
// transfers. Transfer joins the transaction carried by ctx, so a caller such as
// the marketplace ledger can move custody atomically with its own writes.
type Registry struct {
	tx         database.Transactor
	repo       repositories.AssetRepository
	collection models.Collection
	log        logger.Logger
	now        func() time.Time
}

// NewRegistry returns a Registry managing collection.
func NewRegistry(tx database.Transactor, repo repositories.AssetRepository, collection models.Collection, log logger.Logger) *Registry {
	return &Registry{
		tx:         tx,
		repo:       repo,
		collection: collection,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Collection returns the collection this registry manages.
func (r *Registry) Collection() models.Collection {
	return r.collection
}

// Contract returns the collection's contract address.
func (r *Registry) Contract() identity.Address {
	return r.collection.Contract
}

// Mint creates the next token of the collection, owned by owner.
// Token ids are dense from 1 and never reused.
func (r *Registry) Mint(ctx context.Context, owner identity.Address, tokenURI string) (*models.Asset, error) {
	if owner.IsZero() {
		return nil, assetdomain.ErrInvalidRecipient
	}
	if err := domainsvcs.ValidateTokenURI(tokenURI); err != nil {
		return nil, err
	}

	var asset *models.Asset
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.repo.EnsureCollection(ctx, r.collection); err != nil {
			return err
		}
		id, err := r.repo.NextTokenID(ctx, r.collection.Contract)
		if err != nil {
			return err
		}
		asset = &models.Asset{
			Contract: r.collection.Contract,
			TokenID:  id,
			Owner:    owner,
			TokenURI: tokenURI,
			MintedAt: r.now(),
		}
		return r.repo.Insert(ctx, asset)
	})
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	r.log.InfoContext(ctx, "asset minted", "contract", asset.Contract, "token_id", asset.TokenID, "owner", owner)
	return asset, nil
}

// Get returns the token identified by ref.
func (r *Registry) Get(ctx context.Context, ref models.Ref) (*models.Asset, error) {
	if err := r.checkContract(ref.Contract); err != nil {
		return nil, fmt.Errorf("%w: %w", assetdomain.ErrAssetNotFound, err)
	}
	return r.repo.Get(ctx, ref)
}

// OwnerOf returns the current owner of ref.
func (r *Registry) OwnerOf(ctx context.Context, ref models.Ref) (identity.Address, error) {
	a, err := r.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

// TokenURI returns the metadata pointer of ref.
func (r *Registry) TokenURI(ctx context.Context, ref models.Ref) (string, error) {
	a, err := r.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return a.TokenURI, nil
}

// BalanceOf returns how many tokens of contract owner holds.
func (r *Registry) BalanceOf(ctx context.Context, contract, owner identity.Address) (int64, error) {
	if err := r.checkContract(contract); err != nil {
		return 0, err
	}
	return r.repo.CountOwned(ctx, contract, owner)
}

// TokenCount returns how many tokens of contract were minted.
func (r *Registry) TokenCount(ctx context.Context, contract identity.Address) (uint64, error) {
	if err := r.checkContract(contract); err != nil {
		return 0, err
	}
	return r.repo.TokenCount(ctx, contract)
}

// SetApprovalForAll lets operator move every token of contract held by owner,
// or revokes that right when approved is false.
func (r *Registry) SetApprovalForAll(ctx context.Context, contract, owner, operator identity.Address, approved bool) error {
	if err := r.checkContract(contract); err != nil {
		return err
	}
	if operator.IsZero() || operator == owner {
		return fmt.Errorf("%w: %q", assetdomain.ErrInvalidOperator, operator)
	}
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.repo.EnsureCollection(ctx, r.collection); err != nil {
			return err
		}
		return r.repo.SetApproval(ctx, contract, owner, operator, approved)
	})
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	r.log.InfoContext(ctx, "operator approval set",
		"contract", contract, "owner", owner, "operator", operator, "approved", approved)
	return nil
}

// IsApprovedForAll reports whether operator may move owner's tokens of contract.
func (r *Registry) IsApprovedForAll(ctx context.Context, contract, owner, operator identity.Address) (bool, error) {
	if err := r.checkContract(contract); err != nil {
		return false, err
	}
	return r.repo.IsApproved(ctx, contract, owner, operator)
}

// Transfer moves token tokenID of contract from one account to another on
// behalf of operator. The token row is locked for the rest of the transaction.
func (r *Registry) Transfer(ctx context.Context, contract identity.Address, tokenID uint64, from, to, operator identity.Address) error {
	ref := models.Ref{Contract: contract, TokenID: tokenID}
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.checkContract(contract); err != nil {
			return fmt.Errorf("%w: %w", assetdomain.ErrAssetNotFound, err)
		}
		asset, err := r.repo.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		approved := operator == from
		if !approved {
			if approved, err = r.repo.IsApproved(ctx, contract, from, operator); err != nil {
				return err
			}
		}
		if err := domainsvcs.CheckTransfer(asset, from, to, operator, approved); err != nil {
			return err
		}
		return r.repo.SetOwner(ctx, ref, to)
	})
	if err != nil {
		return fmt.Errorf("transfer %s: %w", ref, err)
	}
	r.log.DebugContext(ctx, "asset transferred", "asset", ref.String(), "from", from, "to", to, "operator", operator)
	return nil
}

func (r *Registry) checkContract(contract identity.Address) error {
	if contract != r.collection.Contract {
		return fmt.Errorf("%w: %s", assetdomain.ErrCollectionNotFound, contract)
	}
	return nil
}
