package cache

import "strings"

// Manager owns the merged-rules response cache. Merged rule sets are derived
// at read time from the guardrail tiers, so the cache sits in front of the
// merge endpoint and is invalidated whenever a tier record changes.
type Manager struct {
	merged *LRUCache
}

// NewManager creates a Manager from the given configuration.
// If cfg is nil or disabled, it returns nil; a nil Manager is a no-op.
func NewManager(cfg *CacheConfig) *Manager {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Manager{merged: NewLRUCache(cfg.MaxSize, cfg.MergedTTL)}
}

// InvalidateBrand drops every cached merge involving the brand. Merge keys
// lead with the brand identifier (see mergedKey), so campaign and asset
// merges of the brand are swept along with the brand-only merge.
func (m *Manager) InvalidateBrand(brandID string) {
	if m == nil {
		return
	}
	prefix := brandID + "|"
	m.merged.InvalidateMatching(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// InvalidateAll clears the merged response cache.
func (m *Manager) InvalidateAll() {
	if m == nil {
		return
	}
	m.merged.InvalidateAll()
}
