package handlers

import (
	"net/http"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
	appsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
)

// MintAssetRequest is the request body for POST /assets.
type MintAssetRequest struct {
	TokenURI string `json:"token_uri" validate:"required,max=2048" example:"ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"`
} // @name MintAssetRequest

// PostAssetHandler handles POST /assets.
type PostAssetHandler struct {
	svc *appsvcs.Services
}

// NewPostAssetHandler returns a PostAssetHandler.
func NewPostAssetHandler(svc *appsvcs.Services) *PostAssetHandler {
	return &PostAssetHandler{svc: svc}
}

// Execute mints a token to the connected wallet.
//
//	@Summary		Mint asset
//	@Description	Mints the next token of the collection to the connected wallet. The metadata itself lives elsewhere; only its URI is stored.
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MintAssetRequest	true	"Token metadata URI"
//	@Success		201		{object}	AssetResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/assets [post]
func (h *PostAssetHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.CallerFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[MintAssetRequest](w, r)
	if !ok {
		return
	}
	asset, err := h.svc.Registry.Mint(r.Context(), caller, req.TokenURI)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newAssetResponse(asset))
}
