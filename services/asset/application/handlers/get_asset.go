package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	appsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

// GetAssetHandler handles GET /assets/{tokenId}.
type GetAssetHandler struct {
	svc *appsvcs.Services
}

// NewGetAssetHandler returns a GetAssetHandler.
func NewGetAssetHandler(svc *appsvcs.Services) *GetAssetHandler {
	return &GetAssetHandler{svc: svc}
}

// Execute returns one token of the collection.
//
//	@Summary		Get asset
//	@Description	Returns owner and metadata URI of a token
//	@Tags			assets
//	@Produce		json
//	@Param			tokenId	path		int	true	"Token id"
//	@Success		200		{object}	AssetResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Router			/assets/{tokenId} [get]
func (h *GetAssetHandler) Execute(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "tokenId")
	tokenID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %q", assetdomain.ErrAssetNotFound, raw))
		return
	}
	ref := models.Ref{Contract: h.svc.Registry.Contract(), TokenID: tokenID}
	asset, err := h.svc.Registry.Get(r.Context(), ref)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newAssetResponse(asset))
}
