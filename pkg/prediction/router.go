package prediction

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with prediction routes.
func NewRouter(predictor *Predictor, store *AnalyticsStore) chi.Router {
	r := chi.NewRouter()

	r.Post("/predict", predictHandler(predictor))
	r.Get("/{contentID}", listPredictionsHandler(store))

	return r
}
