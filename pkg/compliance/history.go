package compliance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// ComplianceHistoryRecord is an immutable audit row, one per compliance
// check. Rows are write-once: concurrent checks for the same content produce
// distinct rows and never race on updates.
type ComplianceHistoryRecord struct {
	ID                 string                `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ContentID          string                `gorm:"column:content_id;index:idx_history_content_time,priority:1;not null" json:"contentId"`
	ContentType        string                `gorm:"column:content_type;not null" json:"contentType"`
	BrandID            string                `gorm:"column:brand_id;index;not null" json:"brandId"`
	CampaignID         string                `gorm:"column:campaign_id" json:"campaignId,omitempty"`
	AssetID            string                `gorm:"column:asset_id" json:"assetId,omitempty"`
	AssetType          string                `gorm:"column:asset_type" json:"assetType,omitempty"`
	OverallScore       float64               `gorm:"column:overall_score;not null" json:"overallScore"`
	BrandScore         float64               `gorm:"column:brand_score;not null" json:"brandScore"`
	CampaignScore      *float64              `gorm:"column:campaign_score" json:"campaignScore,omitempty"`
	AssetScore         *float64              `gorm:"column:asset_score" json:"assetScore,omitempty"`
	Warnings           rules.JSONStringSlice `gorm:"column:warnings;type:text" json:"warnings,omitempty"`
	Suggestions        rules.JSONStringSlice `gorm:"column:suggestions;type:text" json:"suggestions,omitempty"`
	CriticalIssueCount int                   `gorm:"column:critical_issue_count" json:"criticalIssueCount"`
	HasOverrides       bool                  `gorm:"column:has_overrides" json:"hasOverrides"`
	CheckedAt          time.Time             `gorm:"column:checked_at;index:idx_history_content_time,priority:2;autoCreateTime" json:"checkedAt"`
}

// TableName returns the GORM table name.
func (ComplianceHistoryRecord) TableName() string { return "compliance_history" }

// HistoryStore provides append-only operations for compliance history rows.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// AutoMigrate creates or updates the compliance history table.
func (s *HistoryStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ComplianceHistoryRecord{}); err != nil {
		return fmt.Errorf("auto-migrate compliance_history: %w", err)
	}
	return nil
}

// Append creates a new immutable history row.
func (s *HistoryStore) Append(ctx context.Context, record *ComplianceHistoryRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("append compliance history: %w", err)
	}
	return nil
}

// ListByContent returns paginated history rows for a content item, newest
// first. Rows are ordered by (checked_at, id) descending and the page token
// encodes both, so checks sharing an exact timestamp never straddle a page
// boundary.
func (s *HistoryStore) ListByContent(contentID string, pageSize int, pageToken string) ([]ComplianceHistoryRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var totalSize int64
	if err := s.db.Model(&ComplianceHistoryRecord{}).Where("content_id = ?", contentID).Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count compliance history: %w", err)
	}

	query := s.db.Where("content_id = ?", contentID).Order("checked_at DESC, id DESC").Limit(pageSize + 1)
	if pageToken != "" {
		t, id, err := parseHistoryPageToken(pageToken)
		if err != nil {
			return nil, "", 0, err
		}
		query = query.Where("checked_at < ? OR (checked_at = ? AND id < ?)", t, t, id)
	}

	var records []ComplianceHistoryRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list compliance history: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		last := records[pageSize-1]
		nextToken = historyPageToken(last.CheckedAt, last.ID)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

// historyPageToken encodes the (checked_at, id) cursor of the last row on a
// page.
func historyPageToken(checkedAt time.Time, id string) string {
	return checkedAt.Format(time.RFC3339Nano) + "|" + id
}

func parseHistoryPageToken(token string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(token, "|")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("invalid page token: missing row cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid page token: %w", err)
	}
	return t, id, nil
}

// DeleteOlderThan deletes history rows checked before the given cutoff time.
// Returns the number of deleted rows.
func (s *HistoryStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("checked_at < ?", cutoff).Delete(&ComplianceHistoryRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old compliance history: %w", result.Error)
	}
	return result.RowsAffected, nil
}
