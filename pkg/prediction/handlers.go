package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// predictRequest is the POST /predict body.
type predictRequest struct {
	Content         string   `json:"content"`
	BrandID         string   `json:"brandId"`
	Context         Context  `json:"context"`
	ComplianceScore *float64 `json:"complianceScore,omitempty"`
}

// predictHandler returns a handler that runs a performance prediction.
func predictHandler(predictor *Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}
		if req.BrandID == "" {
			writeError(w, http.StatusBadRequest, "brandId is required")
			return
		}

		result, err := predictor.Predict(r.Context(), req.Content, req.BrandID, req.Context, req.ComplianceScore)
		if err != nil {
			if errors.Is(err, ErrInvalidContentID) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// listPredictionsHandler returns a handler that lists persisted prediction
// rows for a content item.
func listPredictionsHandler(store *AnalyticsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentID")

		records, err := store.ListPredictions(contentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list predictions: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"predictions": records,
		})
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
