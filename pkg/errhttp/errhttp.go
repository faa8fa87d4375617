// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to StatusOf for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	walletdomain "github.com/omnik-labs/marketplace/services/wallet/domain"
)

var hideInternal atomic.Bool

// HideInternalErrors makes WriteError replace 5xx messages with the status
// text. The API enables it in production.
func HideInternalErrors(hide bool) {
	hideInternal.Store(hide)
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, hideInternal.Load()))
}

// StatusOf returns the HTTP status for err.
// Market errors are matched first: ErrTransferRejected wraps the registry cause,
// and the ledger's classification is the one the caller should see.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, marketdomain.ErrInvalidPrice):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, marketdomain.ErrInvalidItemID):
		return http.StatusNotFound // 404
	case errors.Is(err, marketdomain.ErrAlreadySold):
		return http.StatusConflict // 409
	case errors.Is(err, marketdomain.ErrInsufficientPayment):
		return http.StatusPaymentRequired // 402
	case errors.Is(err, marketdomain.ErrTransferRejected), errors.Is(err, marketdomain.ErrCustodyAccount):
		return http.StatusForbidden // 403
	case errors.Is(err, marketdomain.ErrSettlementNotFound):
		return http.StatusNotFound // 404

	case errors.Is(err, walletdomain.ErrInsufficientFunds):
		return http.StatusPaymentRequired // 402
	case errors.Is(err, walletdomain.ErrInvalidAmount), errors.Is(err, money.ErrInvalidAmount):
		return http.StatusUnprocessableEntity // 422

	case errors.Is(err, assetdomain.ErrAssetNotFound), errors.Is(err, assetdomain.ErrCollectionNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, assetdomain.ErrNotOwner), errors.Is(err, assetdomain.ErrNotApproved):
		return http.StatusForbidden // 403
	case errors.Is(err, assetdomain.ErrInvalidRecipient), errors.Is(err, assetdomain.ErrInvalidTokenURI),
		errors.Is(err, assetdomain.ErrInvalidOperator):
		return http.StatusUnprocessableEntity // 422

	case errors.Is(err, identity.ErrCallerNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, identity.ErrReservedAddress):
		return http.StatusForbidden // 403
	case errors.Is(err, identity.ErrInvalidAddress):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
