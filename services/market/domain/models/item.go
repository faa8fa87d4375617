package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/identity"
)

// AssetRef points at one token in an external asset registry.
type AssetRef struct {
	Contract identity.Address
	TokenID  uint64
}

// String renders the ref as "contract/tokenID".
func (r AssetRef) String() string {
	return fmt.Sprintf("%s/%d", r.Contract, r.TokenID)
}

// Item is a listing held in the ledger's custody.
// ID, Asset, Price and Seller never change; Sold flips to true exactly once.
type Item struct {
	ID     int64
	Asset  AssetRef
	Price  decimal.Decimal
	Seller identity.Address
	Sold   bool

	// History only; settlement never reads these.
	Buyer    identity.Address
	ListedAt time.Time
	SoldAt   time.Time

	// SaleRef names the request that bought the item, when it supplied one.
	SaleRef string
}

// NewItem returns an unsold listing.
func NewItem(id int64, asset AssetRef, price decimal.Decimal, seller identity.Address, listedAt time.Time) *Item {
	return &Item{
		ID:       id,
		Asset:    asset,
		Price:    price,
		Seller:   seller,
		ListedAt: listedAt,
	}
}

// MarkSold moves the item to its terminal state.
func (i *Item) MarkSold(buyer identity.Address, at time.Time) {
	i.Sold = true
	i.Buyer = buyer
	i.SoldAt = at
}
