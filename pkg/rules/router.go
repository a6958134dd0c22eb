package rules

import (
	"github.com/go-chi/chi/v5"

	"github.com/pharmalign/guardrails/pkg/cache"
)

// NewRouter creates a chi router with guardrail tier CRUD and merge routes.
// merged may be nil to disable merge-response caching.
func NewRouter(store *Store, merged *cache.Manager) chi.Router {
	r := chi.NewRouter()

	r.Get("/brands", listBrandsHandler(store))
	r.Get("/brands/{brandID}", getBrandHandler(store))
	r.Put("/brands/{brandID}", putBrandHandler(store, merged))

	r.Get("/campaigns/{campaignID}", getCampaignHandler(store))
	r.Put("/campaigns/{campaignID}", putCampaignHandler(store, merged))

	r.Get("/assets/{assetID}", getAssetHandler(store))
	r.Put("/assets/{assetID}", putAssetHandler(store, merged))

	r.With(merged.Middleware()).Get("/merged", getMergedHandler(store))

	return r
}
