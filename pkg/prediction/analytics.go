package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// ContentAnalyticsRecord is one historical observation of how a piece of
// content performed: its MLR outcome, measured engagement, and compliance
// score at the time.
type ContentAnalyticsRecord struct {
	ID              string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	BrandID         string    `gorm:"column:brand_id;index:idx_analytics_brand_time,priority:1;not null" json:"brandId"`
	ContentID       string    `gorm:"column:content_id;index" json:"contentId"`
	ContentType     string    `gorm:"column:content_type;not null" json:"contentType"`
	MLRApproved     bool      `gorm:"column:mlr_approved" json:"mlrApproved"`
	EngagementRate  float64   `gorm:"column:engagement_rate" json:"engagementRate"`
	ComplianceScore float64   `gorm:"column:compliance_score" json:"complianceScore"`
	CreatedAt       time.Time `gorm:"column:created_at;index:idx_analytics_brand_time,priority:2;autoCreateTime" json:"createdAt"`
}

// TableName returns the GORM table name.
func (ContentAnalyticsRecord) TableName() string { return "content_analytics" }

// PredictionRecord is one persisted sub-prediction row. Rows are insert-only;
// repeated evaluations of the same content produce new rows.
type PredictionRecord struct {
	ID              string                `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ContentID       string                `gorm:"column:content_id;index:idx_predictions_content,priority:1;not null" json:"contentId"`
	ContentType     string                `gorm:"column:content_type;index:idx_predictions_content,priority:2;not null" json:"contentType"`
	PredictionType  string                `gorm:"column:prediction_type;index:idx_predictions_content,priority:3;not null" json:"predictionType"`
	PredictedScore  float64               `gorm:"column:predicted_score;not null" json:"predictedScore"`
	ConfidenceLevel float64               `gorm:"column:confidence_level;not null" json:"confidenceLevel"`
	Indicators      rules.JSONStringSlice `gorm:"column:indicators;type:text" json:"indicators,omitempty"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName returns the GORM table name.
func (PredictionRecord) TableName() string { return "performance_predictions" }

// historyWindow bounds how many historical records feed prediction base rates.
const historyWindow = 50

// AnalyticsStore provides historical analytics reads and insert-only
// prediction persistence.
type AnalyticsStore struct {
	db *gorm.DB
}

// NewAnalyticsStore creates a new AnalyticsStore.
func NewAnalyticsStore(db *gorm.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// AutoMigrate creates or updates the analytics and prediction tables.
func (s *AnalyticsStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ContentAnalyticsRecord{}); err != nil {
		return fmt.Errorf("auto-migrate content_analytics: %w", err)
	}
	if err := s.db.AutoMigrate(&PredictionRecord{}); err != nil {
		return fmt.Errorf("auto-migrate performance_predictions: %w", err)
	}
	return nil
}

// HistoricalData returns the most recent analytics records for a brand and
// content type, newest first, bounded to the history window.
func (s *AnalyticsStore) HistoricalData(brandID, contentType string) ([]ContentAnalyticsRecord, error) {
	var records []ContentAnalyticsRecord
	err := s.db.
		Where("brand_id = ? AND content_type = ?", brandID, contentType).
		Order("created_at DESC").
		Limit(historyWindow).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("get historical analytics: %w", err)
	}
	return records, nil
}

// RecordAnalytics appends one historical observation.
func (s *AnalyticsStore) RecordAnalytics(record *ContentAnalyticsRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("record content analytics: %w", err)
	}
	return nil
}

// SavePredictions writes the four sub-predictions as separate rows keyed by
// (content_id, content_type, prediction_type).
func (s *AnalyticsStore) SavePredictions(ctx context.Context, contentID, contentType string, result *Result) error {
	records := make([]PredictionRecord, 0, 4)
	for _, sub := range result.Subs() {
		records = append(records, PredictionRecord{
			ID:              uuid.New().String(),
			ContentID:       contentID,
			ContentType:     contentType,
			PredictionType:  string(sub.Type),
			PredictedScore:  sub.PredictedScore,
			ConfidenceLevel: sub.ConfidenceLevel,
			Indicators:      rules.JSONStringSlice(sub.Indicators),
		})
	}
	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("save predictions: %w", err)
	}
	return nil
}

// ListPredictions returns persisted prediction rows for a content item,
// newest first.
func (s *AnalyticsStore) ListPredictions(contentID string) ([]PredictionRecord, error) {
	var records []PredictionRecord
	err := s.db.
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return records, nil
}
