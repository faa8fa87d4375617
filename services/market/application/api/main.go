package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/services/market/application/handlers"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
)

// MarketRoutes registers ledger endpoints on the provided chi router.
// Async purchase routes are mounted only when settlements is non-nil.
// a.Config must have passed config.ValidateMarketplace; an invalid asset
// contract address panics here, at registration, rather than per request.
func MarketRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, settlements handlers.Settlements) {
	currency := a.Config.Currency()
	contract := identity.MustParseAddress(a.Config.AssetContractAddress)
	requireAuth := auth.RequireAuth(a.SessionStore, a.Logger)

	r.Get("/ledger", handlers.NewGetLedgerHandler(svcs, currency).Execute)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", handlers.NewGetItemsHandler(svcs, currency).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(svcs, currency).Execute)
		r.Get("/{id}/total-price", handlers.NewGetTotalPriceHandler(svcs, currency).Execute)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", handlers.NewPostItemHandler(svcs, currency, contract).Execute)
			r.Post("/{id}/purchase", handlers.NewPostPurchaseHandler(svcs, currency).Execute)
			if settlements != nil {
				r.Post("/{id}/purchase/async", handlers.NewPostPurchaseAsyncHandler(settlements).Execute)
			}
		})
	})

	if settlements != nil {
		r.Get("/settlements/{workflowId}", handlers.NewGetSettlementHandler(settlements).Execute)
	}
}
