package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	"github.com/omnik-labs/marketplace/services/market/domain/repositories"
	"github.com/omnik-labs/marketplace/services/market/infrastructure/persistence/postgres/db"
)

// LedgerRepository implements repositories.LedgerRepository against PostgreSQL.
type LedgerRepository struct {
	db *database.Database
}

// NewLedgerRepository returns a LedgerRepository on the shared pool.
func NewLedgerRepository(database *database.Database) *LedgerRepository {
	return &LedgerRepository{db: database}
}

func (r *LedgerRepository) EnsureConfig(ctx context.Context, cfg models.LedgerConfig) (models.LedgerConfig, error) {
	q := db.New(r.db.Conn(ctx))
	if err := q.EnsureLedger(ctx, cfg.Address.String(), cfg.FeeRecipient.String(), cfg.FeePercent); err != nil {
		return models.LedgerConfig{}, fmt.Errorf("ensure ledger: %w", err)
	}
	row, err := q.GetLedger(ctx)
	if err != nil {
		return models.LedgerConfig{}, fmt.Errorf("read ledger: %w", err)
	}
	return models.LedgerConfig{
		Address:      identity.Address(row.Address),
		FeeRecipient: identity.Address(row.FeeRecipient),
		FeePercent:   row.FeePercent,
	}, nil
}

func (r *LedgerRepository) NextItemID(ctx context.Context) (int64, error) {
	id, err := db.New(r.db.Conn(ctx)).NextItemID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next item id: %w", err)
	}
	return id, nil
}

func (r *LedgerRepository) ItemCount(ctx context.Context) (int64, error) {
	row, err := db.New(r.db.Conn(ctx)).GetLedger(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("item count: %w", err)
	}
	return row.ItemCount, nil
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db *database.Database
}

// NewItemRepository returns an ItemRepository on the shared pool.
func NewItemRepository(database *database.Database) *ItemRepository {
	return &ItemRepository{db: database}
}

func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	if item.Asset.TokenID > math.MaxInt64 {
		return fmt.Errorf("insert item: asset id %d out of range", item.Asset.TokenID)
	}
	if err := db.New(r.db.Conn(ctx)).InsertItem(ctx, db.InsertItemParams{
		ID:            item.ID,
		AssetContract: item.Asset.Contract.String(),
		AssetID:       int64(item.Asset.TokenID),
		Price:         item.Price,
		Seller:        item.Seller.String(),
		ListedAt:      item.ListedAt,
	}); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*models.Item, error) {
	row, err := db.New(r.db.Conn(ctx)).GetItem(ctx, id)
	return r.toItem(id, row, err)
}

func (r *ItemRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	row, err := db.New(r.db.Conn(ctx)).GetItemForUpdate(ctx, id)
	return r.toItem(id, row, err)
}

func (r *ItemRepository) toItem(id int64, row db.MarketItem, err error) (*models.Item, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, id)
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row), nil
}

func (r *ItemRepository) MarkSold(ctx context.Context, item *models.Item) error {
	n, err := db.New(r.db.Conn(ctx)).MarkItemSold(ctx, db.MarkItemSoldParams{
		ID:      item.ID,
		Buyer:   item.Buyer.String(),
		SoldAt:  item.SoldAt,
		SaleRef: item.SaleRef,
	})
	if err != nil {
		return fmt.Errorf("mark sold: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %d", marketdomain.ErrAlreadySold, item.ID)
	}
	return nil
}

func (r *ItemRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	q := db.New(r.db.Conn(ctx))
	limit := opts.Limit
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	rows, err := q.ListItems(ctx, db.ListItemsParams{
		UnsoldOnly: opts.UnsoldOnly,
		Limit:      int32(limit),
		Offset:     int32(min(max(opts.Offset, 0), math.MaxInt32)),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	total, err := q.CountItems(ctx, opts.UnsoldOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, int(total), nil
}

// rowToItem maps a db.MarketItem to a domain models.Item.
func rowToItem(row db.MarketItem) *models.Item {
	item := &models.Item{
		ID: row.ID,
		Asset: models.AssetRef{
			Contract: identity.Address(row.AssetContract),
			TokenID:  uint64(row.AssetID),
		},
		Price:    row.Price,
		Seller:   identity.Address(row.Seller),
		Sold:     row.Sold,
		ListedAt: row.ListedAt,
	}
	if row.Buyer.Valid {
		item.Buyer = identity.Address(row.Buyer.String)
	}
	if row.SoldAt.Valid {
		item.SoldAt = row.SoldAt.Time
	}
	if row.SaleRef.Valid {
		item.SaleRef = row.SaleRef.String
	}
	return item
}
