package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
	"github.com/omnik-labs/marketplace/services/market/application/workflows"
)

// Settlements starts and observes async purchases.
type Settlements interface {
	Start(ctx context.Context, in workflows.PurchaseInput) (string, error)
	Status(ctx context.Context, workflowID string) (*workflows.Settlement, error)
}

// SettlementAccepted is returned when an async purchase is submitted.
type SettlementAccepted struct {
	WorkflowID string `json:"workflow_id" example:"purchase-1-0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"`
	StatusURL  string `json:"status_url"  example:"/api/settlements/purchase-1-0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"`
} // @name SettlementAccepted

// PostPurchaseAsyncHandler handles POST /items/{id}/purchase/async.
type PostPurchaseAsyncHandler struct {
	settlements Settlements
}

// NewPostPurchaseAsyncHandler returns a PostPurchaseAsyncHandler.
func NewPostPurchaseAsyncHandler(settlements Settlements) *PostPurchaseAsyncHandler {
	return &PostPurchaseAsyncHandler{settlements: settlements}
}

// Execute submits a purchase for background settlement.
//
//	@Summary		Purchase item asynchronously
//	@Description	Starts a settlement workflow and returns immediately. Poll the status URL for the outcome. Resubmitting while the first is running returns the same workflow.
//	@Tags			market
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Item id"
//	@Param			request	body		PurchaseRequest	true	"Payment"
//	@Success		202		{object}	SettlementAccepted
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/items/{id}/purchase/async [post]
func (h *PostPurchaseAsyncHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	workflowID, err := h.settlements.Start(r.Context(), workflows.PurchaseInput{
		ItemID:  id,
		Payment: payment.String(),
		Buyer:   caller.String(),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, SettlementAccepted{
		WorkflowID: workflowID,
		StatusURL:  "/api/settlements/" + workflowID,
	})
}

// GetSettlementHandler handles GET /settlements/{workflowId}.
type GetSettlementHandler struct {
	settlements Settlements
}

// NewGetSettlementHandler returns a GetSettlementHandler.
func NewGetSettlementHandler(settlements Settlements) *GetSettlementHandler {
	return &GetSettlementHandler{settlements: settlements}
}

// Execute reports the state of an async purchase.
//
//	@Summary	Settlement status
//	@Tags		market
//	@Produce	json
//	@Param		workflowId	path		string	true	"Workflow id"
//	@Success	200			{object}	workflows.Settlement
//	@Failure	404			{object}	httpx.ErrorResponse
//	@Router		/settlements/{workflowId} [get]
func (h *GetSettlementHandler) Execute(w http.ResponseWriter, r *http.Request) {
	st, err := h.settlements.Status(r.Context(), chi.URLParam(r, "workflowId"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}
