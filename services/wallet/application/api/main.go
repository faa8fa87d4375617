package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/services/wallet/application/handlers"
	appsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

// SessionRoutes registers wallet connect and disconnect. The ledger's custody
// address is refused; a.Config must have passed config.ValidateMarketplace.
func SessionRoutes(r chi.Router, a *app.Application) {
	h := handlers.NewSessionHandler(a.SessionStore, a.Logger, identity.MustParseAddress(a.Config.MarketAddress))
	r.Post("/session", h.Connect)
	r.Delete("/session", h.Disconnect)
}

// WalletRoutes registers wallet endpoints on the provided chi router.
func WalletRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	currency := a.Config.Currency()
	r.Route("/wallets", func(r chi.Router) {
		if a.Config.FaucetEnabled {
			r.With(auth.RequireAuth(a.SessionStore, a.Logger)).
				Post("/faucet", handlers.NewPostFaucetHandler(svcs, currency).Execute)
		}
		r.Get("/{address}", handlers.NewGetBalanceHandler(svcs, currency).Execute)
	})
}
