// Package memory implements the asset repositories on a shared memtx.World.
package memory

import (
	"context"
	"fmt"
	"maps"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

const registryTable = "asset_registry"

type collectionRow struct {
	models.Collection
	tokenCount uint64
}

type approvalKey struct {
	contract, owner, operator identity.Address
}

type registry struct {
	collections map[identity.Address]collectionRow
	assets      map[models.Ref]models.Asset
	approvals   map[approvalKey]struct{}
}

func (r *registry) Clone() memtx.Table {
	return &registry{
		collections: maps.Clone(r.collections),
		assets:      maps.Clone(r.assets),
		approvals:   maps.Clone(r.approvals),
	}
}

// AssetRepository implements repositories.AssetRepository in memory. Every
// transaction of a memtx.World is serialized, so GetForUpdate needs no extra lock.
type AssetRepository struct {
	world *memtx.World
}

// NewAssetRepository registers the registry table on world.
func NewAssetRepository(world *memtx.World) *AssetRepository {
	world.Register(registryTable, &registry{
		collections: map[identity.Address]collectionRow{},
		assets:      map[models.Ref]models.Asset{},
		approvals:   map[approvalKey]struct{}{},
	})
	return &AssetRepository{world: world}
}

func (r *AssetRepository) EnsureCollection(ctx context.Context, c models.Collection) error {
	return memtx.Update(ctx, r.world, registryTable, func(reg *registry) error {
		if _, ok := reg.collections[c.Contract]; !ok {
			reg.collections[c.Contract] = collectionRow{Collection: c}
		}
		return nil
	})
}

func (r *AssetRepository) NextTokenID(ctx context.Context, contract identity.Address) (uint64, error) {
	var id uint64
	err := memtx.Update(ctx, r.world, registryTable, func(reg *registry) error {
		row, ok := reg.collections[contract]
		if !ok {
			return fmt.Errorf("%w: %s", assetdomain.ErrCollectionNotFound, contract)
		}
		row.tokenCount++
		reg.collections[contract] = row
		id = row.tokenCount
		return nil
	})
	return id, err
}

func (r *AssetRepository) TokenCount(ctx context.Context, contract identity.Address) (uint64, error) {
	var n uint64
	err := memtx.View(ctx, r.world, registryTable, func(reg *registry) error {
		n = reg.collections[contract].tokenCount
		return nil
	})
	return n, err
}

func (r *AssetRepository) Insert(ctx context.Context, a *models.Asset) error {
	return memtx.Update(ctx, r.world, registryTable, func(reg *registry) error {
		if _, ok := reg.assets[a.Ref()]; ok {
			return fmt.Errorf("insert asset %s: already minted", a.Ref())
		}
		reg.assets[a.Ref()] = *a
		return nil
	})
}

func (r *AssetRepository) Get(ctx context.Context, ref models.Ref) (*models.Asset, error) {
	var out *models.Asset
	err := memtx.View(ctx, r.world, registryTable, func(reg *registry) error {
		a, ok := reg.assets[ref]
		if !ok {
			return fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *AssetRepository) GetForUpdate(ctx context.Context, ref models.Ref) (*models.Asset, error) {
	return r.Get(ctx, ref)
}

func (r *AssetRepository) SetOwner(ctx context.Context, ref models.Ref, owner identity.Address) error {
	return memtx.Update(ctx, r.world, registryTable, func(reg *registry) error {
		a, ok := reg.assets[ref]
		if !ok {
			return fmt.Errorf("%w: %s", assetdomain.ErrAssetNotFound, ref)
		}
		a.Owner = owner
		reg.assets[ref] = a
		return nil
	})
}

func (r *AssetRepository) CountOwned(ctx context.Context, contract, owner identity.Address) (int64, error) {
	var n int64
	err := memtx.View(ctx, r.world, registryTable, func(reg *registry) error {
		for ref, a := range reg.assets {
			if ref.Contract == contract && a.Owner == owner {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *AssetRepository) SetApproval(ctx context.Context, contract, owner, operator identity.Address, approved bool) error {
	return memtx.Update(ctx, r.world, registryTable, func(reg *registry) error {
		key := approvalKey{contract: contract, owner: owner, operator: operator}
		if approved {
			reg.approvals[key] = struct{}{}
		} else {
			delete(reg.approvals, key)
		}
		return nil
	})
}

func (r *AssetRepository) IsApproved(ctx context.Context, contract, owner, operator identity.Address) (bool, error) {
	var ok bool
	err := memtx.View(ctx, r.world, registryTable, func(reg *registry) error {
		_, ok = reg.approvals[approvalKey{contract: contract, owner: owner, operator: operator}]
		return nil
	})
	return ok, err
}
