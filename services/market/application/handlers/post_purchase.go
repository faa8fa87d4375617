package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// PurchaseRequest is the request body for POST /items/{id}/purchase.
type PurchaseRequest struct {
	// Payment in base units. At least the item's total price; any excess is kept by the ledger.
	Payment string `json:"payment" validate:"required,amount" example:"2020000000000000000"`
} // @name PurchaseRequest

// ReceiptResponse is the outcome of a settled purchase.
type ReceiptResponse struct {
	Item   ItemResponse `json:"item"`
	Price  string       `json:"price"  example:"2000000000000000000"`
	Fee    string       `json:"fee"    example:"20000000000000000"`
	Total  string       `json:"total"  example:"2020000000000000000"`
	Paid   string       `json:"paid"   example:"2020000000000000000"`
	Excess string       `json:"excess" example:"0"`
} // @name ReceiptResponse

func newReceiptResponse(svc *appsvcs.Services, r *models.Receipt, currency money.Currency) ReceiptResponse {
	return ReceiptResponse{
		Item:   newItemResponse(svc, r.Item, currency),
		Price:  r.Price.String(),
		Fee:    r.Fee.String(),
		Total:  r.Total.String(),
		Paid:   r.Paid.String(),
		Excess: r.Excess.String(),
	}
}

// PostPurchaseHandler handles POST /items/{id}/purchase.
type PostPurchaseHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewPostPurchaseHandler returns a PostPurchaseHandler.
func NewPostPurchaseHandler(svc *appsvcs.Services, currency money.Currency) *PostPurchaseHandler {
	return &PostPurchaseHandler{svc: svc, currency: currency}
}

// Execute buys an item for the connected wallet.
//
//	@Summary		Purchase item
//	@Description	Debits the payment from the caller, pays seller and fee recipient, and transfers the asset to the caller, all at once.
//	@Tags			market
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Item id"
//	@Param			request	body		PurchaseRequest	true	"Payment"
//	@Success		200		{object}	ReceiptResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		402		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		409		{object}	httpx.ErrorResponse
//	@Router			/items/{id}/purchase [post]
func (h *PostPurchaseHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.CallerFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, err := itemID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[PurchaseRequest](w, r)
	if !ok {
		return
	}
	payment, err := money.ParseBaseUnits(req.Payment)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	receipt, err := h.svc.Ledger.Purchase(r.Context(), id, payment, caller)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newReceiptResponse(h.svc, receipt, h.currency))
}
