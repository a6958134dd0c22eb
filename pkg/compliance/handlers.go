package compliance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// checkHandler returns a handler that runs a compliance check.
func checkHandler(checker *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckRequest
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

		result, err := checker.Check(r.Context(), req)
		if err != nil {
			if errors.Is(err, rules.ErrMissingBrandGuardrails) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("compliance check failed: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// historyHandler returns a handler that lists paginated history rows for a
// content item, newest first.
func historyHandler(store *HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentID")

		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}
		pageToken := r.URL.Query().Get("pageToken")

		records, nextToken, total, err := store.ListByContent(contentID, pageSize, pageToken)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list compliance history: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"history":       records,
			"nextPageToken": nextToken,
			"totalSize":     total,
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
