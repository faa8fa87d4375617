package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
)

// TotalPriceResponse is what a buyer must pay for an item.
type TotalPriceResponse struct {
	ItemID     int64  `json:"item_id"     example:"1"`
	TotalPrice string `json:"total_price" example:"2020000000000000000"`
	Display    string `json:"display"     example:"2.02 ETH"`
} // @name TotalPriceResponse

// GetTotalPriceHandler handles GET /items/{id}/total-price.
type GetTotalPriceHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewGetTotalPriceHandler returns a GetTotalPriceHandler.
func NewGetTotalPriceHandler(svc *appsvcs.Services, currency money.Currency) *GetTotalPriceHandler {
	return &GetTotalPriceHandler{svc: svc, currency: currency}
}

// Execute returns price plus fee.
//
//	@Summary		Total price
//	@Description	Price plus the ledger fee, rounded down. This is the minimum payment a purchase accepts.
//	@Tags			market
//	@Produce		json
//	@Param			id	path		int	true	"Item id"
//	@Success		200	{object}	TotalPriceResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Router			/items/{id}/total-price [get]
func (h *GetTotalPriceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	total, err := h.svc.Ledger.TotalPrice(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TotalPriceResponse{ItemID: id, TotalPrice: total.String(), Display: h.currency.Format(total)})
}
