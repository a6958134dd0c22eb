package rules

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingBrandGuardrails is returned when a merge or compliance check is
// requested for a brand that has no guardrail record. Callers must create the
// brand tier first; this is a precondition failure, not a retryable error.
var ErrMissingBrandGuardrails = errors.New("brand guardrails not found")

// Store provides CRUD operations for the three guardrail tiers.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the guardrail tier tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&BrandGuardrailRecord{}); err != nil {
		return fmt.Errorf("auto-migrate brand_guardrails: %w", err)
	}
	if err := s.db.AutoMigrate(&CampaignGuardrailRecord{}); err != nil {
		return fmt.Errorf("auto-migrate campaign_guardrails: %w", err)
	}
	if err := s.db.AutoMigrate(&AssetGuardrailRecord{}); err != nil {
		return fmt.Errorf("auto-migrate asset_guardrails: %w", err)
	}
	return nil
}

// GetBrand retrieves the brand guardrail record for a brand.
// Returns nil, nil if no record exists.
func (s *Store) GetBrand(brandID string) (*BrandGuardrailRecord, error) {
	var record BrandGuardrailRecord
	err := s.db.Where("brand_id = ?", brandID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand guardrails: %w", err)
	}
	return &record, nil
}

// GetCampaign retrieves the campaign guardrail overlay for a campaign.
// Returns nil, nil if the campaign has no customizations.
func (s *Store) GetCampaign(campaignID string) (*CampaignGuardrailRecord, error) {
	var record CampaignGuardrailRecord
	err := s.db.Where("campaign_id = ?", campaignID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign guardrails: %w", err)
	}
	return &record, nil
}

// GetAsset retrieves the asset guardrail overlay for an asset.
// Returns nil, nil if the asset has no customizations.
func (s *Store) GetAsset(assetID string) (*AssetGuardrailRecord, error) {
	var record AssetGuardrailRecord
	err := s.db.Where("asset_id = ?", assetID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset guardrails: %w", err)
	}
	return &record, nil
}

// UpsertBrand creates or updates a brand guardrail record.
// The conflict is resolved on the brand_id unique index.
func (s *Store) UpsertBrand(record *BrandGuardrailRecord) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "brand_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"key_messages", "tone_guidelines",
			"content_dos", "content_donts",
			"regulatory_musts", "visual_standards",
			"competitive_advantages", "market_positioning",
			"updated_by", "updated_at",
		}),
	}).Create(record).Error
}

// UpsertCampaign creates or updates a campaign guardrail overlay.
// The conflict is resolved on the campaign_id unique index.
func (s *Store) UpsertCampaign(record *CampaignGuardrailRecord) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"brand_id", "inherits_from_brand", "override_level", "rationale",
			"custom_key_messages", "tone_overrides", "regulatory_additions",
			"competitive_focus", "market_specific_rules",
			"updated_by", "updated_at",
		}),
	}).Create(record).Error
}

// UpsertAsset creates or updates an asset guardrail overlay.
// The conflict is resolved on the asset_id unique index.
func (s *Store) UpsertAsset(record *AssetGuardrailRecord) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"brand_id", "campaign_id", "asset_type",
			"message_customizations", "tone_adjustments",
			"format_constraints", "character_limits", "channel_requirements",
			"regulatory_placement_rules", "review_overrides",
			"updated_by", "updated_at",
		}),
	}).Create(record).Error
}

// ListBrands returns paginated brand guardrail records ordered by brand_id.
// pageToken is the brand_id of the last record from the previous page; pass ""
// for the first page.
func (s *Store) ListBrands(pageSize int, pageToken string) ([]BrandGuardrailRecord, string, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Order("brand_id ASC").Limit(pageSize + 1)
	if pageToken != "" {
		query = query.Where("brand_id > ?", pageToken)
	}

	var records []BrandGuardrailRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", fmt.Errorf("list brand guardrails: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].BrandID
		records = records[:pageSize]
	}

	return records, nextToken, nil
}

// GetMerged fetches all present tiers for the given identifiers and merges
// them into the effective rule set. campaignID and assetID may be empty.
// A missing brand tier surfaces as ErrMissingBrandGuardrails.
func (s *Store) GetMerged(brandID, campaignID, assetID string) (*MergedGuardrails, error) {
	brand, err := s.GetBrand(brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s: %w", brandID, ErrMissingBrandGuardrails)
	}

	var campaign *CampaignGuardrailRecord
	if campaignID != "" {
		if campaign, err = s.GetCampaign(campaignID); err != nil {
			return nil, err
		}
	}

	var asset *AssetGuardrailRecord
	if assetID != "" {
		if asset, err = s.GetAsset(assetID); err != nil {
			return nil, err
		}
	}

	return Merge(brand, campaign, asset)
}
