package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
)

// LedgerResponse is the ledger configuration and its item count.
type LedgerResponse struct {
	Address      string `json:"address"       example:"0x5fbdb2315678afecb367f032d93f642f64180aa3"`
	FeeRecipient string `json:"fee_recipient" example:"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"`
	FeePercent   int64  `json:"fee_percent"   example:"1"`
	ItemCount    int64  `json:"item_count"    example:"3"`
	Currency     string `json:"currency"      example:"ETH"`
	Decimals     int32  `json:"decimals"      example:"18"`
} // @name LedgerResponse

// GetLedgerHandler handles GET /ledger.
type GetLedgerHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewGetLedgerHandler returns a GetLedgerHandler.
func NewGetLedgerHandler(svc *appsvcs.Services, currency money.Currency) *GetLedgerHandler {
	return &GetLedgerHandler{svc: svc, currency: currency}
}

// Execute returns the ledger configuration.
//
//	@Summary	Ledger
//	@Tags		market
//	@Produce	json
//	@Success	200	{object}	LedgerResponse
//	@Failure	500	{object}	httpx.ErrorResponse
//	@Router		/ledger [get]
func (h *GetLedgerHandler) Execute(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Ledger.ItemCount(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	cfg := h.svc.Ledger.Config()
	httpx.JSON(w, http.StatusOK, LedgerResponse{
		Address:      cfg.Address.String(),
		FeeRecipient: cfg.FeeRecipient.String(),
		FeePercent:   cfg.FeePercent,
		ItemCount:    count,
		Currency:     h.currency.Symbol,
		Decimals:     h.currency.Decimals,
	})
}
