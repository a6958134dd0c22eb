package compliance

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// RetentionConfig controls compliance history retention.
type RetentionConfig struct {
	RetentionDays int  // Default 365
	Enabled       bool // Whether the retention worker runs
}

// DefaultRetentionConfig returns the default configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 365,
		Enabled:       true,
	}
}

// RetentionConfigFromEnv loads config from environment variables.
// GUARDRAILS_HISTORY_RETENTION_DAYS, GUARDRAILS_HISTORY_RETENTION_ENABLED
func RetentionConfigFromEnv() *RetentionConfig {
	cfg := DefaultRetentionConfig()

	if v := os.Getenv("GUARDRAILS_HISTORY_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	if v := os.Getenv("GUARDRAILS_HISTORY_RETENTION_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}

	return cfg
}

// RetentionWorker periodically deletes old compliance history rows.
type RetentionWorker struct {
	store     *HistoryStore
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewRetentionWorker creates a RetentionWorker. retentionDays controls how
// many days of history to keep. The worker runs daily.
func NewRetentionWorker(store *HistoryStore, retentionDays int, logger *slog.Logger) *RetentionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionWorker{
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		logger:    logger,
	}
}

// Run starts the retention worker. It runs until the context is cancelled.
func (w *RetentionWorker) Run(ctx context.Context) {
	if w.store == nil || w.retention <= 0 {
		w.logger.Info("history retention worker disabled",
			"hasStore", w.store != nil,
			"retentionDays", int(w.retention.Hours()/24))
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("history retention worker started",
		"retentionDays", int(w.retention.Hours()/24),
		"interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("history retention worker stopped")
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

// cleanup performs a single retention pass.
func (w *RetentionWorker) cleanup() {
	cutoff := time.Now().Add(-w.retention)
	deleted, err := w.store.DeleteOlderThan(cutoff)
	if err != nil {
		w.logger.Error("history retention cleanup failed", "error", err)
	} else if deleted > 0 {
		w.logger.Info("history retention cleanup completed",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339))
	}
}
