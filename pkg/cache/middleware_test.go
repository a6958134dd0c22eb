package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"MergeCachedOnSecondCall", testMergeCachedOnSecondCall},
		{"NonMergeRequestsPassThrough", testNonMergeRequestsPassThrough},
		{"FailedMergeNotCached", testFailedMergeNotCached},
		{"ParameterOrderSharesEntry", testParameterOrderSharesEntry},
		{"DistinctTierSetsCachedSeparately", testDistinctTierSetsCachedSeparately},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func newTestManager() *Manager {
	return NewManager(&CacheConfig{
		Enabled:   true,
		MergedTTL: 5 * time.Second,
		MaxSize:   100,
	})
}

func countingMergeHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func testMergeCachedOnSecondCall(t *testing.T) {
	calls := 0
	m := newTestManager()
	wrapped := m.Middleware()(countingMergeHandler(&calls, http.StatusOK, `{"effectiveRules":{}}`))

	req1 := httptest.NewRequest(http.MethodGet, "/merged?brandId=brand-1", nil)
	rec1 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec1, req1)

	if calls != 1 {
		t.Fatalf("expected one merge, got %d", calls)
	}
	if rec1.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected X-Cache: MISS, got %q", rec1.Header().Get("X-Cache"))
	}

	req2 := httptest.NewRequest(http.MethodGet, "/merged?brandId=brand-1", nil)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, req2)

	if calls != 1 {
		t.Fatalf("expected the second request to skip the merge, got %d calls", calls)
	}
	if rec2.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected X-Cache: HIT, got %q", rec2.Header().Get("X-Cache"))
	}

	body, _ := io.ReadAll(rec2.Result().Body)
	if string(body) != `{"effectiveRules":{}}` {
		t.Fatalf("expected the cached merge body, got %q", string(body))
	}
}

func testNonMergeRequestsPassThrough(t *testing.T) {
	calls := 0
	m := newTestManager()
	wrapped := m.Middleware()(countingMergeHandler(&calls, http.StatusOK, `ok`))

	// POSTs are never cached.
	post := httptest.NewRequest(http.MethodPost, "/check", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, post)
	if rec.Header().Get("X-Cache") != "" {
		t.Fatalf("expected no X-Cache header on POST, got %q", rec.Header().Get("X-Cache"))
	}

	// GETs without a brandId never reach the cache either.
	get := httptest.NewRequest(http.MethodGet, "/merged", nil)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, get)
	if rec2.Header().Get("X-Cache") != "" {
		t.Fatalf("expected no X-Cache header without a brandId, got %q", rec2.Header().Get("X-Cache"))
	}

	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
	if m.merged.Size() != 0 {
		t.Fatalf("expected nothing cached, got %d entries", m.merged.Size())
	}
}

func testFailedMergeNotCached(t *testing.T) {
	calls := 0
	m := newTestManager()
	wrapped := m.Middleware()(countingMergeHandler(&calls, http.StatusNotFound, `{"error":"no guardrails for brand missing"}`))

	req := httptest.NewRequest(http.MethodGet, "/merged?brandId=missing", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if m.merged.Size() != 0 {
		t.Fatalf("expected failed merges to stay uncached, got %d entries", m.merged.Size())
	}

	// The retry runs the merge again instead of replaying the failure.
	req2 := httptest.NewRequest(http.MethodGet, "/merged?brandId=missing", nil)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, req2)
	if calls != 2 {
		t.Fatalf("expected the merge to run twice, got %d", calls)
	}
}

func testParameterOrderSharesEntry(t *testing.T) {
	calls := 0
	m := newTestManager()
	wrapped := m.Middleware()(countingMergeHandler(&calls, http.StatusOK, `{"effectiveRules":{}}`))

	req1 := httptest.NewRequest(http.MethodGet, "/merged?brandId=brand-1&campaignId=camp-1", nil)
	rec1 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec1, req1)

	// Same tiers, reordered parameters: the key is position-normalized.
	req2 := httptest.NewRequest(http.MethodGet, "/merged?campaignId=camp-1&brandId=brand-1", nil)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, req2)

	if rec2.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected reordered parameters to hit, got %q", rec2.Header().Get("X-Cache"))
	}
	if calls != 1 {
		t.Fatalf("expected a single merge across both orderings, got %d", calls)
	}
}

func testDistinctTierSetsCachedSeparately(t *testing.T) {
	calls := 0
	m := newTestManager()
	wrapped := m.Middleware()(countingMergeHandler(&calls, http.StatusOK, `{"effectiveRules":{}}`))

	for _, target := range []string{
		"/merged?brandId=brand-1",
		"/merged?brandId=brand-1&assetId=asset-1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		if rec.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("expected %q to miss on first request, got %q", target, rec.Header().Get("X-Cache"))
		}
	}

	if calls != 2 {
		t.Fatalf("expected each tier set to merge once, got %d", calls)
	}
	if m.merged.Size() != 2 {
		t.Fatalf("expected two cached merges, got %d", m.merged.Size())
	}
}
