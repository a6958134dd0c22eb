package compliance

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with compliance check and history routes.
func NewRouter(checker *Checker, history *HistoryStore) chi.Router {
	r := chi.NewRouter()

	r.Post("/check", checkHandler(checker))
	r.Get("/history/{contentID}", historyHandler(history))

	return r
}
