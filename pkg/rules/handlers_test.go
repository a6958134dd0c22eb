package rules

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalign/guardrails/pkg/cache"
)

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BrandLifecycle(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	missing := doRequest(t, router, http.MethodGet, "/brands/brand-1", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	put := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{
		"toneGuidelines": map[string]any{"primary": "confident"},
	})
	require.Equal(t, http.StatusOK, put.Code)

	get := doRequest(t, router, http.MethodGet, "/brands/brand-1", nil)
	require.Equal(t, http.StatusOK, get.Code)

	var record BrandGuardrailRecord
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &record))
	assert.Equal(t, "brand-1", record.BrandID)
	assert.Equal(t, "confident", record.ToneGuidelines.Primary)
	assert.NotEmpty(t, record.ID)
}

func TestRouter_PutBrandRecordsActor(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	body, err := json.Marshal(map[string]any{})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/brands/brand-1", bytes.NewReader(body))
	req.Header.Set("X-User-Principal", "reviewer@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	record, err := store.GetBrand("brand-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "reviewer@example.com", record.UpdatedBy)
}

func TestRouter_CampaignRequiresBrand(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	noBrandID := doRequest(t, router, http.MethodPut, "/campaigns/campaign-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, noBrandID.Code)

	orphan := doRequest(t, router, http.MethodPut, "/campaigns/campaign-1", map[string]any{
		"brandId": "brand-1",
	})
	assert.Equal(t, http.StatusNotFound, orphan.Code)

	put := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{})
	require.Equal(t, http.StatusOK, put.Code)

	created := doRequest(t, router, http.MethodPut, "/campaigns/campaign-1", map[string]any{
		"brandId":   "brand-1",
		"rationale": "launch messaging",
	})
	assert.Equal(t, http.StatusOK, created.Code)
}

func TestRouter_AssetRequiresBrand(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	orphan := doRequest(t, router, http.MethodPut, "/assets/asset-1", map[string]any{
		"brandId": "brand-1",
	})
	assert.Equal(t, http.StatusNotFound, orphan.Code)

	put := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{})
	require.Equal(t, http.StatusOK, put.Code)

	created := doRequest(t, router, http.MethodPut, "/assets/asset-1", map[string]any{
		"brandId":   "brand-1",
		"assetType": "email",
	})
	require.Equal(t, http.StatusOK, created.Code)

	get := doRequest(t, router, http.MethodGet, "/assets/asset-1", nil)
	require.Equal(t, http.StatusOK, get.Code)
}

func TestRouter_Merged(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	noBrand := doRequest(t, router, http.MethodGet, "/merged", nil)
	assert.Equal(t, http.StatusBadRequest, noBrand.Code)

	unknown := doRequest(t, router, http.MethodGet, "/merged?brandId=brand-1", nil)
	assert.Equal(t, http.StatusNotFound, unknown.Code)

	put := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{
		"toneGuidelines": map[string]any{"primary": "confident"},
	})
	require.Equal(t, http.StatusOK, put.Code)

	merged := doRequest(t, router, http.MethodGet, "/merged?brandId=brand-1", nil)
	require.Equal(t, http.StatusOK, merged.Code)

	var result MergedGuardrails
	require.NoError(t, json.Unmarshal(merged.Body.Bytes(), &result))
	assert.Equal(t, "confident", result.EffectiveRules.ToneGuidelines.Primary)
	require.Len(t, result.InheritanceChain, 1)
	assert.Equal(t, TierBrand, result.InheritanceChain[0].Level)
}

func TestRouter_MergedCaching(t *testing.T) {
	store := newTestStore(t)
	manager := cache.NewManager(&cache.CacheConfig{
		Enabled:   true,
		MergedTTL: time.Minute,
		MaxSize:   10,
	})
	router := NewRouter(store, manager)

	put := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{
		"toneGuidelines": map[string]any{"primary": "confident"},
	})
	require.Equal(t, http.StatusOK, put.Code)

	first := doRequest(t, router, http.MethodGet, "/merged?brandId=brand-1", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doRequest(t, router, http.MethodGet, "/merged?brandId=brand-1", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	// Updating any tier of the brand invalidates its cached merges.
	update := doRequest(t, router, http.MethodPut, "/brands/brand-1", map[string]any{
		"toneGuidelines": map[string]any{"primary": "measured"},
	})
	require.Equal(t, http.StatusOK, update.Code)

	third := doRequest(t, router, http.MethodGet, "/merged?brandId=brand-1", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))

	var result MergedGuardrails
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &result))
	assert.Equal(t, "measured", result.EffectiveRules.ToneGuidelines.Primary)
}

func TestRouter_ListBrands(t *testing.T) {
	store := newTestStore(t)
	router := NewRouter(store, nil)

	for _, id := range []string{"brand-a", "brand-b", "brand-c"} {
		put := doRequest(t, router, http.MethodPut, "/brands/"+id, map[string]any{})
		require.Equal(t, http.StatusOK, put.Code)
	}

	list := doRequest(t, router, http.MethodGet, "/brands?pageSize=2", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var page struct {
		Brands        []BrandGuardrailRecord `json:"brands"`
		NextPageToken string                 `json:"nextPageToken"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &page))
	require.Len(t, page.Brands, 2)
	assert.NotEmpty(t, page.NextPageToken)
}
