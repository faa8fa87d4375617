package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
)

const (
	sessionName       = "omnik_session"
	sessionAddressKey = "address"
)

// Connect stores addr as the connected wallet of the caller's session.
// Authentication stops at "the caller holds this address"; no signature is checked.
func Connect(store sessions.Store, w http.ResponseWriter, r *http.Request, addr identity.Address) error {
	session, err := store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Values[sessionAddressKey] = addr.String()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Disconnect expires the caller's session.
func Disconnect(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Options.MaxAge = -1
	delete(session.Values, sessionAddressKey)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

// RequireAuth is a chi middleware that enforces a connected wallet via session cookies.
// It reads the session cookie, parses the stored address, and injects it into the
// request context. Returns 401 Unauthorized if the session is missing, invalid, or
// lacks a valid address.
//
// After this middleware, handlers can safely call identity.CallerFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "wallet not connected")
				return
			}

			raw, ok := session.Values[sessionAddressKey].(string)
			if !ok || raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "wallet not connected")
				return
			}

			addr, err := identity.ParseAddress(raw)
			if err != nil {
				log.WarnContext(r.Context(), "invalid address in session", "address", raw, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), addr)))
		})
	}
}
