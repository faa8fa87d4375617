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

// ListItemRequest is the request body for POST /items.
type ListItemRequest struct {
	// Contract defaults to the marketplace collection.
	Contract string `json:"contract" validate:"omitempty,eth_addr" example:"0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"`
	TokenID  uint64 `json:"token_id" validate:"required"           example:"1"`
	// Price in base units.
	Price string `json:"price" validate:"required,amount" example:"2000000000000000000"`
} // @name ListItemRequest

// PostItemHandler handles POST /items.
type PostItemHandler struct {
	svc             *appsvcs.Services
	currency        money.Currency
	defaultContract identity.Address
}

// NewPostItemHandler returns a PostItemHandler.
func NewPostItemHandler(svc *appsvcs.Services, currency money.Currency, defaultContract identity.Address) *PostItemHandler {
	return &PostItemHandler{svc: svc, currency: currency, defaultContract: defaultContract}
}

// Execute lists an asset of the connected wallet.
//
//	@Summary		List item
//	@Description	Moves the asset into ledger custody and offers it at price. The ledger must be an approved operator of the caller.
//	@Tags			market
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ListItemRequest	true	"Asset and price"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.CallerFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ListItemRequest](w, r)
	if !ok {
		return
	}

	contract := h.defaultContract
	if req.Contract != "" {
		if contract, err = identity.ParseAddress(req.Contract); err != nil {
			errhttp.WriteError(w, err)
			return
		}
	}
	price, err := money.ParseAmount(req.Price)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	item, err := h.svc.Ledger.List(r.Context(), models.AssetRef{Contract: contract, TokenID: req.TokenID}, price, caller)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newItemResponse(h.svc, item, h.currency))
}
