package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/services/asset/application/handlers"
	appsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
)

// AssetRoutes registers asset registry endpoints on the provided chi router.
func AssetRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/approvals", handlers.NewGetApprovalHandler(svcs).Execute)
		r.Get("/{tokenId}", handlers.NewGetAssetHandler(svcs).Execute)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
			r.Post("/", handlers.NewPostAssetHandler(svcs).Execute)
			r.Put("/approvals", handlers.NewPutApprovalHandler(svcs).Execute)
		})
	})
}
