package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
)

// GetItemHandler handles GET /items/{id}.
type GetItemHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewGetItemHandler returns a GetItemHandler.
func NewGetItemHandler(svc *appsvcs.Services, currency money.Currency) *GetItemHandler {
	return &GetItemHandler{svc: svc, currency: currency}
}

// Execute returns one item, sold or not.
//
//	@Summary	Get item
//	@Tags		market
//	@Produce	json
//	@Param		id	path		int	true	"Item id"
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	item, err := h.svc.Ledger.GetItem(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newItemResponse(h.svc, item, h.currency))
}
