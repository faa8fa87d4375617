package repositories

import (
	"context"

	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit      int // Maximum number of records to return
	Offset     int // Number of records to skip
	UnsoldOnly bool
}

// LedgerRepository persists the ledger's singleton state: its configuration and
// the item counter. Implementations take part in the transaction carried by ctx.
type LedgerRepository interface {
	// EnsureConfig records cfg if the ledger has none yet and returns the stored one.
	EnsureConfig(ctx context.Context, cfg models.LedgerConfig) (models.LedgerConfig, error)

	// NextItemID increments the item counter and returns the new value. The
	// increment is rolled back with the transaction, so ids stay gapless.
	NextItemID(ctx context.Context) (int64, error)

	ItemCount(ctx context.Context) (int64, error)
}

// ItemRepository is the persistence interface for listings.
type ItemRepository interface {
	Insert(ctx context.Context, item *models.Item) error

	// Get returns ErrInvalidItemID when no item has the id.
	Get(ctx context.Context, id int64) (*models.Item, error)

	// GetForUpdate is Get with the row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Item, error)

	// MarkSold persists the item's sold state, buyer and sale time.
	MarkSold(ctx context.Context, item *models.Item) error

	// List returns a page of items ordered by id, plus the total matching count.
	List(ctx context.Context, opts QueryOpts) ([]*models.Item, int, error)
}
