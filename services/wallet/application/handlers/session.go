package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gorilla/sessions"

	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	pkgvalidator "github.com/omnik-labs/marketplace/pkg/validator"
)

// ConnectRequest is the request body for POST /session.
type ConnectRequest struct {
	Address string `json:"address" validate:"required,eth_addr" example:"0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"`
} // @name ConnectRequest

// SessionResponse names the connected wallet.
type SessionResponse struct {
	Address string `json:"address" example:"0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"`
} // @name SessionResponse

// SessionHandler handles POST and DELETE /session.
type SessionHandler struct {
	store    sessions.Store
	log      logger.Logger
	reserved []identity.Address
}

// NewSessionHandler returns a SessionHandler. Addresses in reserved, such as the
// ledger's custody account, can never be connected.
func NewSessionHandler(store sessions.Store, log logger.Logger, reserved ...identity.Address) *SessionHandler {
	return &SessionHandler{store: store, log: log, reserved: reserved}
}

// Connect binds a wallet address to the caller's session.
//
//	@Summary		Connect wallet
//	@Description	Stores the address in a session cookie. Holding the cookie is what authenticates later calls.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ConnectRequest	true	"Wallet address"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Router			/session [post]
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ConnectRequest](w, r)
	if !ok {
		return
	}
	addr, err := identity.ParseAddress(req.Address)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if slices.Contains(h.reserved, addr) {
		errhttp.WriteError(w, fmt.Errorf("%w: %s", identity.ErrReservedAddress, addr))
		return
	}
	if err := auth.Connect(h.store, w, r, addr); err != nil {
		h.log.ErrorContext(r.Context(), "connect session", "error", err)
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SessionResponse{Address: addr.String()})
}

// Disconnect ends the caller's session.
//
//	@Summary	Disconnect wallet
//	@Tags		session
//	@Success	204
//	@Router		/session [delete]
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := auth.Disconnect(h.store, w, r); err != nil {
		h.log.ErrorContext(r.Context(), "disconnect session", "error", err)
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
