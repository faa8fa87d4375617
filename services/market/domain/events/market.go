package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// Topics published by the ledger.
const (
	TopicOffered = "market.offered"
	TopicBought  = "market.bought"
)

const schemaVersion = 1

// Offered is published in the same transaction that lists an item.
type Offered struct {
	ID            uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	ItemID        int64     `json:"item_id"`
	AssetContract string    `json:"asset_contract"`
	AssetID       uint64    `json:"asset_id"`
	Price         string    `json:"price"` // base units
	Seller        string    `json:"seller"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewOffered builds the event for a freshly listed item.
func NewOffered(item *models.Item) Offered {
	return Offered{
		ID:            uuid.New(),
		Version:       schemaVersion,
		ItemID:        item.ID,
		AssetContract: item.Asset.Contract.String(),
		AssetID:       item.Asset.TokenID,
		Price:         item.Price.String(),
		Seller:        item.Seller.String(),
		OccurredAt:    item.ListedAt,
	}
}

func (e Offered) EventTopic() string { return TopicOffered }
func (e Offered) EventID() string    { return e.ID.String() }
func (e Offered) EventVersion() int  { return e.Version }

// Bought is published in the same transaction that settles a purchase.
type Bought struct {
	ID            uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	ItemID        int64     `json:"item_id"`
	AssetContract string    `json:"asset_contract"`
	AssetID       uint64    `json:"asset_id"`
	Price         string    `json:"price"`
	Fee           string    `json:"fee"`
	Seller        string    `json:"seller"`
	Buyer         string    `json:"buyer"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewBought builds the event for a settled receipt.
func NewBought(r *models.Receipt) Bought {
	return Bought{
		ID:            uuid.New(),
		Version:       schemaVersion,
		ItemID:        r.Item.ID,
		AssetContract: r.Item.Asset.Contract.String(),
		AssetID:       r.Item.Asset.TokenID,
		Price:         r.Price.String(),
		Fee:           r.Fee.String(),
		Seller:        r.Item.Seller.String(),
		Buyer:         r.Item.Buyer.String(),
		OccurredAt:    r.Item.SoldAt,
	}
}

func (e Bought) EventTopic() string { return TopicBought }
func (e Bought) EventID() string    { return e.ID.String() }
func (e Bought) EventVersion() int  { return e.Version }
