package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
	appsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

// FaucetRequest is the request body for POST /wallets/faucet.
type FaucetRequest struct {
	// Amount in display units of the configured currency.
	Amount string `json:"amount" validate:"required,amount" example:"10"`
} // @name FaucetRequest

// PostFaucetHandler handles POST /wallets/faucet. Only mounted when FAUCET_ENABLED.
type PostFaucetHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewPostFaucetHandler returns a PostFaucetHandler.
func NewPostFaucetHandler(svc *appsvcs.Services, currency money.Currency) *PostFaucetHandler {
	return &PostFaucetHandler{svc: svc, currency: currency}
}

// Execute credits the connected wallet.
//
//	@Summary		Faucet
//	@Description	Credits the connected wallet with test funds. Disabled in production.
//	@Tags			wallets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		FaucetRequest	true	"Amount to mint"
//	@Success		200		{object}	BalanceResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/wallets/faucet [post]
func (h *PostFaucetHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.CallerFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[FaucetRequest](w, r)
	if !ok {
		return
	}
	amount, err := h.currency.ParseUnits(req.Amount)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	acct, err := h.svc.Wallet.Deposit(r.Context(), caller, amount)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newBalanceResponse(acct, h.currency))
}
