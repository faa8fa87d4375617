package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
	appsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
)

// SetApprovalRequest is the request body for PUT /assets/approvals.
type SetApprovalRequest struct {
	Operator string `json:"operator" validate:"required,eth_addr" example:"0x5fbdb2315678afecb367f032d93f642f64180aa3"`
	Approved bool   `json:"approved" example:"true"`
} // @name SetApprovalRequest

// ApprovalResponse reports an operator approval.
type ApprovalResponse struct {
	Contract string `json:"contract" example:"0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"`
	Owner    string `json:"owner"    example:"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"`
	Operator string `json:"operator" example:"0x5fbdb2315678afecb367f032d93f642f64180aa3"`
	Approved bool   `json:"approved" example:"true"`
} // @name ApprovalResponse

// PutApprovalHandler handles PUT /assets/approvals.
type PutApprovalHandler struct {
	svc *appsvcs.Services
}

// NewPutApprovalHandler returns a PutApprovalHandler.
func NewPutApprovalHandler(svc *appsvcs.Services) *PutApprovalHandler {
	return &PutApprovalHandler{svc: svc}
}

// Execute grants or revokes an operator for every token of the connected wallet.
//
//	@Summary		Set operator approval
//	@Description	Approving the marketplace address lets it take custody of the caller's tokens when listing.
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SetApprovalRequest	true	"Operator and flag"
//	@Success		200		{object}	ApprovalResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/assets/approvals [put]
func (h *PutApprovalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.CallerFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SetApprovalRequest](w, r)
	if !ok {
		return
	}
	operator, err := identity.ParseAddress(req.Operator)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	contract := h.svc.Registry.Contract()
	if err := h.svc.Registry.SetApprovalForAll(r.Context(), contract, caller, operator, req.Approved); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ApprovalResponse{
		Contract: contract.String(),
		Owner:    caller.String(),
		Operator: operator.String(),
		Approved: req.Approved,
	})
}

// GetApprovalHandler handles GET /assets/approvals?owner=&operator=.
type GetApprovalHandler struct {
	svc *appsvcs.Services
}

// NewGetApprovalHandler returns a GetApprovalHandler.
func NewGetApprovalHandler(svc *appsvcs.Services) *GetApprovalHandler {
	return &GetApprovalHandler{svc: svc}
}

// Execute reports whether operator may move owner's tokens.
//
//	@Summary		Get operator approval
//	@Tags			assets
//	@Produce		json
//	@Param			owner		query		string	true	"Owner address"
//	@Param			operator	query		string	true	"Operator address"
//	@Success		200			{object}	ApprovalResponse
//	@Failure		422			{object}	httpx.ErrorResponse
//	@Router			/assets/approvals [get]
func (h *GetApprovalHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, err := identity.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	operator, err := identity.ParseAddress(r.URL.Query().Get("operator"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	contract := h.svc.Registry.Contract()
	approved, err := h.svc.Registry.IsApprovedForAll(r.Context(), contract, owner, operator)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ApprovalResponse{
		Contract: contract.String(),
		Owner:    owner.String(),
		Operator: operator.String(),
		Approved: approved,
	})
}
