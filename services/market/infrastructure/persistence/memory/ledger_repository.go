// Package memory implements the ledger repositories and event publisher on a
// shared memtx.World.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/omnik-labs/marketplace/pkg/memtx"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	"github.com/omnik-labs/marketplace/services/market/domain/repositories"
)

const ledgerTable = "market_ledger"

type ledgerState struct {
	config    *models.LedgerConfig
	itemCount int64
	items     map[int64]models.Item
}

func (s *ledgerState) Clone() memtx.Table {
	return &ledgerState{config: s.config, itemCount: s.itemCount, items: maps.Clone(s.items)}
}

func register(world *memtx.World) {
	world.Register(ledgerTable, &ledgerState{items: map[int64]models.Item{}})
}

// LedgerRepository implements repositories.LedgerRepository in memory.
type LedgerRepository struct {
	world *memtx.World
}

// NewLedgerRepository registers the ledger table on world.
func NewLedgerRepository(world *memtx.World) *LedgerRepository {
	register(world)
	return &LedgerRepository{world: world}
}

func (r *LedgerRepository) EnsureConfig(ctx context.Context, cfg models.LedgerConfig) (models.LedgerConfig, error) {
	var stored models.LedgerConfig
	err := memtx.Update(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		if s.config == nil {
			c := cfg
			s.config = &c
		}
		stored = *s.config
		return nil
	})
	return stored, err
}

func (r *LedgerRepository) NextItemID(ctx context.Context) (int64, error) {
	var id int64
	err := memtx.Update(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		s.itemCount++
		id = s.itemCount
		return nil
	})
	return id, err
}

func (r *LedgerRepository) ItemCount(ctx context.Context) (int64, error) {
	var n int64
	err := memtx.View(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		n = s.itemCount
		return nil
	})
	return n, err
}

// ItemRepository implements repositories.ItemRepository in memory.
type ItemRepository struct {
	world *memtx.World
}

// NewItemRepository registers the ledger table on world.
func NewItemRepository(world *memtx.World) *ItemRepository {
	register(world)
	return &ItemRepository{world: world}
}

func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	return memtx.Update(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		if _, ok := s.items[item.ID]; ok {
			return fmt.Errorf("insert item %d: duplicate id", item.ID)
		}
		s.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*models.Item, error) {
	var out *models.Item
	err := memtx.View(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		item, ok := s.items[id]
		if !ok {
			return fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, id)
		}
		out = &item
		return nil
	})
	return out, err
}

// GetForUpdate is Get; memtx transactions are already serialized.
func (r *ItemRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	return r.Get(ctx, id)
}

func (r *ItemRepository) MarkSold(ctx context.Context, item *models.Item) error {
	return memtx.Update(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		cur, ok := s.items[item.ID]
		if !ok {
			return fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, item.ID)
		}
		if cur.Sold {
			return fmt.Errorf("%w: item %d", marketdomain.ErrAlreadySold, item.ID)
		}
		cur.Sold, cur.Buyer, cur.SoldAt, cur.SaleRef = true, item.Buyer, item.SoldAt, item.SaleRef
		s.items[item.ID] = cur
		return nil
	})
}

func (r *ItemRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	var (
		page  []*models.Item
		total int
	)
	err := memtx.View(ctx, r.world, ledgerTable, func(s *ledgerState) error {
		ids := slices.Sorted(maps.Keys(s.items))
		matched := make([]*models.Item, 0, len(ids))
		for _, id := range ids {
			item := s.items[id]
			if opts.UnsoldOnly && item.Sold {
				continue
			}
			matched = append(matched, &item)
		}
		total = len(matched)
		start := min(max(opts.Offset, 0), total)
		end := total
		if opts.Limit > 0 {
			end = min(start+opts.Limit, total)
		}
		page = matched[start:end]
		return nil
	})
	return page, total, err
}
