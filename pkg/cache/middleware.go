package cache

import (
	"bytes"
	"net/http"
	"net/url"
)

// mergedKey builds the cache key for a merge request from its tier
// identifiers. Positions are fixed so equivalent requests with reordered
// query parameters share one entry, and so brand invalidation can match on
// the leading segment.
func mergedKey(q url.Values) string {
	return q.Get("brandId") + "|" + q.Get("campaignId") + "|" + q.Get("assetId")
}

// mergeResponseRecorder wraps http.ResponseWriter to capture the merge
// response body and status so successful merges can be stored.
type mergeResponseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
	written    bool
}

func (w *mergeResponseRecorder) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *mergeResponseRecorder) Write(b []byte) (int, error) {
	if !w.written {
		w.statusCode = http.StatusOK
		w.written = true
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware returns HTTP middleware that caches merged rule set responses.
//
// Behavior:
//   - Only GET requests naming a brandId are cached; everything else passes
//     through untouched.
//   - On a hit the cached merge is replayed as JSON with X-Cache: HIT.
//   - On a miss the merge runs and, when it succeeds with 200, the body is
//     stored under the tier-identifier key. X-Cache: MISS is set.
//   - Failed merges (missing brand, bad parameters) are never cached.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			q := r.URL.Query()
			if q.Get("brandId") == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := mergedKey(q)
			if cached, ok := m.merged.Get(key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(cached)
				return
			}

			rec := &mergeResponseRecorder{ResponseWriter: w}
			rec.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.statusCode == http.StatusOK {
				m.merged.Set(key, rec.body.Bytes())
			}
		})
	}
}
