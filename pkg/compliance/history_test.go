package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyRow(contentID string, checkedAt time.Time, score float64) *ComplianceHistoryRecord {
	return &ComplianceHistoryRecord{
		ID:           uuid.New().String(),
		ContentID:    contentID,
		ContentType:  "asset",
		BrandID:      "b-1",
		OverallScore: score,
		BrandScore:   score,
		CheckedAt:    checkedAt,
	}
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	contentID := uuid.New().String()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		row := historyRow(contentID, base.Add(time.Duration(i)*time.Hour), float64(70+i))
		require.NoError(t, store.Append(ctx, row))
	}
	// A different content item must not leak into the listing.
	require.NoError(t, store.Append(ctx, historyRow(uuid.New().String(), base, 50)))

	records, token, total, err := store.ListByContent(contentID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, records, 2)
	assert.Equal(t, 72.0, records[0].OverallScore)
	assert.Equal(t, 71.0, records[1].OverallScore)
	require.NotEmpty(t, token)

	rest, token, total, err := store.ListByContent(contentID, 2, token)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rest, 1)
	assert.Equal(t, 70.0, rest[0].OverallScore)
	assert.Empty(t, token)
}

func TestHistoryStore_PaginatesSharedTimestamps(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	// Concurrent checks can land on the same timestamp; the cursor must not
	// skip the rows that share it with a page boundary.
	contentID := uuid.New().String()
	checkedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"row-a", "row-b", "row-c"} {
		row := historyRow(contentID, checkedAt, 80)
		row.ID = id
		require.NoError(t, store.Append(ctx, row))
	}

	seen := map[string]bool{}
	token := ""
	for i := 0; i < 3; i++ {
		records, next, total, err := store.ListByContent(contentID, 1, token)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, records, 1)
		seen[records[0].ID] = true
		token = next
	}

	assert.Len(t, seen, 3)
	assert.Empty(t, token)
}

func TestHistoryStore_InvalidPageToken(t *testing.T) {
	store := newTestHistoryStore(t)

	_, _, _, err := store.ListByContent(uuid.New().String(), 10, "not-a-timestamp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page token")
}

func TestHistoryStore_DeleteOlderThan(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	contentID := uuid.New().String()
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now().Add(-1 * time.Hour)
	require.NoError(t, store.Append(ctx, historyRow(contentID, old, 60)))
	require.NoError(t, store.Append(ctx, historyRow(contentID, recent, 80)))

	deleted, err := store.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	records, _, total, err := store.ListByContent(contentID, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, 80.0, records[0].OverallScore)
}

func TestRetentionConfigFromEnv(t *testing.T) {
	t.Setenv("GUARDRAILS_HISTORY_RETENTION_DAYS", "")
	t.Setenv("GUARDRAILS_HISTORY_RETENTION_ENABLED", "")
	cfg := RetentionConfigFromEnv()
	assert.Equal(t, 365, cfg.RetentionDays)
	assert.True(t, cfg.Enabled)

	t.Setenv("GUARDRAILS_HISTORY_RETENTION_DAYS", "30")
	t.Setenv("GUARDRAILS_HISTORY_RETENTION_ENABLED", "false")
	cfg = RetentionConfigFromEnv()
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.False(t, cfg.Enabled)

	// Invalid values fall back to defaults.
	t.Setenv("GUARDRAILS_HISTORY_RETENTION_DAYS", "-5")
	cfg = RetentionConfigFromEnv()
	assert.Equal(t, 365, cfg.RetentionDays)
}

func TestRetentionWorker_StopsOnCancel(t *testing.T) {
	worker := NewRetentionWorker(newTestHistoryStore(t), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retention worker did not stop after context cancellation")
	}
}
