package handlers

import (
	"time"

	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// ItemResponse describes one ledger entry. Amounts are base units; the
// *_display fields render them in the configured currency.
type ItemResponse struct {
	ID           int64      `json:"id"            example:"1"`
	Contract     string     `json:"contract"      example:"0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"`
	TokenID      uint64     `json:"token_id"      example:"1"`
	Price        string     `json:"price"         example:"2000000000000000000"`
	PriceDisplay string     `json:"price_display" example:"2 ETH"`
	TotalPrice   string     `json:"total_price"   example:"2020000000000000000"`
	TotalDisplay string     `json:"total_display" example:"2.02 ETH"`
	Seller       string     `json:"seller"        example:"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"`
	Sold         bool       `json:"sold"          example:"false"`
	Buyer        string     `json:"buyer,omitempty"`
	ListedAt     time.Time  `json:"listed_at"     example:"2024-01-15T10:30:00Z"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`
} // @name ItemResponse

func newItemResponse(svc *appsvcs.Services, item *models.Item, currency money.Currency) ItemResponse {
	_, total := svc.Ledger.Quote(item)
	resp := ItemResponse{
		ID:           item.ID,
		Contract:     item.Asset.Contract.String(),
		TokenID:      item.Asset.TokenID,
		Price:        item.Price.String(),
		PriceDisplay: currency.Format(item.Price),
		TotalPrice:   total.String(),
		TotalDisplay: currency.Format(total),
		Seller:       item.Seller.String(),
		Sold:         item.Sold,
		ListedAt:     item.ListedAt,
	}
	if item.Sold {
		resp.Buyer = item.Buyer.String()
		soldAt := item.SoldAt
		resp.SoldAt = &soldAt
	}
	return resp
}
