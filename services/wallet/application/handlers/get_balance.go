package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
	"github.com/omnik-labs/marketplace/services/wallet/domain/models"
)

// BalanceResponse reports an account balance in base units and display form.
type BalanceResponse struct {
	Address string `json:"address" example:"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"`
	Balance string `json:"balance" example:"2000000000000000000"`
	Display string `json:"display" example:"2 ETH"`
} // @name BalanceResponse

func newBalanceResponse(acct *models.Account, currency money.Currency) BalanceResponse {
	return BalanceResponse{
		Address: acct.Address.String(),
		Balance: acct.Balance.String(),
		Display: currency.Format(acct.Balance),
	}
}

// GetBalanceHandler handles GET /wallets/{address}.
type GetBalanceHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewGetBalanceHandler returns a GetBalanceHandler.
func NewGetBalanceHandler(svc *appsvcs.Services, currency money.Currency) *GetBalanceHandler {
	return &GetBalanceHandler{svc: svc, currency: currency}
}

// Execute returns the balance of an address.
//
//	@Summary		Get balance
//	@Description	Returns the settlement balance of an account. Unknown accounts hold zero.
//	@Tags			wallets
//	@Produce		json
//	@Param			address	path		string	true	"Account address"
//	@Success		200		{object}	BalanceResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/wallets/{address} [get]
func (h *GetBalanceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	addr, err := identity.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	acct, err := h.svc.Wallet.Balance(r.Context(), addr)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newBalanceResponse(acct, h.currency))
}
