package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pharmalign/guardrails/pkg/cache"
)

// getBrandHandler returns a handler that retrieves a brand guardrail record.
func getBrandHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brandID := chi.URLParam(r, "brandID")

		record, err := store.GetBrand(brandID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get brand guardrails: %v", err))
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no guardrails for brand %s", brandID))
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// putBrandHandler returns a handler that creates or replaces a brand
// guardrail record. Cached merges for the brand are invalidated on success.
func putBrandHandler(store *Store, merged *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brandID := chi.URLParam(r, "brandID")

		var record BrandGuardrailRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		record.BrandID = brandID
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.UpdatedBy == "" {
			record.UpdatedBy = extractActor(r)
		}

		if err := store.UpsertBrand(&record); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save brand guardrails: %v", err))
			return
		}
		merged.InvalidateBrand(record.BrandID)
		writeJSON(w, http.StatusOK, &record)
	}
}

// getCampaignHandler returns a handler that retrieves a campaign overlay.
func getCampaignHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")

		record, err := store.GetCampaign(campaignID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get campaign guardrails: %v", err))
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no guardrails for campaign %s", campaignID))
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// putCampaignHandler returns a handler that creates or replaces a campaign
// overlay. The referenced brand guardrails must already exist.
func putCampaignHandler(store *Store, merged *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")

		var record CampaignGuardrailRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		record.CampaignID = campaignID
		if record.BrandID == "" {
			writeError(w, http.StatusBadRequest, "brandId is required")
			return
		}

		// Campaign overlays are meaningless without the brand tier.
		brand, err := store.GetBrand(record.BrandID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to check brand guardrails: %v", err))
			return
		}
		if brand == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no guardrails for brand %s", record.BrandID))
			return
		}

		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.UpdatedBy == "" {
			record.UpdatedBy = extractActor(r)
		}

		if err := store.UpsertCampaign(&record); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save campaign guardrails: %v", err))
			return
		}
		merged.InvalidateBrand(record.BrandID)
		writeJSON(w, http.StatusOK, &record)
	}
}

// getAssetHandler returns a handler that retrieves an asset overlay.
func getAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID := chi.URLParam(r, "assetID")

		record, err := store.GetAsset(assetID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get asset guardrails: %v", err))
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no guardrails for asset %s", assetID))
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// putAssetHandler returns a handler that creates or replaces an asset overlay.
func putAssetHandler(store *Store, merged *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID := chi.URLParam(r, "assetID")

		var record AssetGuardrailRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		record.AssetID = assetID
		if record.BrandID == "" {
			writeError(w, http.StatusBadRequest, "brandId is required")
			return
		}

		brand, err := store.GetBrand(record.BrandID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to check brand guardrails: %v", err))
			return
		}
		if brand == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no guardrails for brand %s", record.BrandID))
			return
		}

		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.UpdatedBy == "" {
			record.UpdatedBy = extractActor(r)
		}

		if err := store.UpsertAsset(&record); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save asset guardrails: %v", err))
			return
		}
		merged.InvalidateBrand(record.BrandID)
		writeJSON(w, http.StatusOK, &record)
	}
}

// getMergedHandler returns a handler that computes the effective rule set for
// the given brand/campaign/asset identifiers.
func getMergedHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brandID := r.URL.Query().Get("brandId")
		if brandID == "" {
			writeError(w, http.StatusBadRequest, "brandId query parameter is required")
			return
		}
		campaignID := r.URL.Query().Get("campaignId")
		assetID := r.URL.Query().Get("assetId")

		merged, err := store.GetMerged(brandID, campaignID, assetID)
		if err != nil {
			if errors.Is(err, ErrMissingBrandGuardrails) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to merge guardrails: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, merged)
	}
}

// listBrandsHandler returns a handler that lists brand guardrail records.
func listBrandsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageSize := pageSizeParam(r)
		pageToken := r.URL.Query().Get("pageToken")

		records, nextToken, err := store.ListBrands(pageSize, pageToken)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list brand guardrails: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"brands":        records,
			"nextPageToken": nextToken,
		})
	}
}

// extractActor extracts the acting user from the request headers.
// Prefers X-User-Principal over X-User-Role, falls back to "system".
func extractActor(r *http.Request) string {
	if principal := r.Header.Get("X-User-Principal"); principal != "" {
		return principal
	}
	if role := r.Header.Get("X-User-Role"); role != "" {
		return role
	}
	return "system"
}

// pageSizeParam reads the pageSize query parameter, defaulting to 20.
func pageSizeParam(r *http.Request) int {
	if ps := r.URL.Query().Get("pageSize"); ps != "" {
		var v int
		if _, err := fmt.Sscanf(ps, "%d", &v); err == nil && v > 0 {
			return v
		}
	}
	return 20
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
