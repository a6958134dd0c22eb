package rules

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// scanJSON deserializes a TEXT/BLOB column into dst.
func scanJSON(dst any, value any) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}

// valueJSON serializes src for storage as a TEXT column.
func valueJSON(src any) (driver.Value, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JSONStringSlice is a custom GORM type for []string stored as JSON.
type JSONStringSlice []string

// Scan implements the sql.Scanner interface for JSONStringSlice.
func (s *JSONStringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	return scanJSON(s, value)
}

// Value implements the driver.Valuer interface for JSONStringSlice.
func (s JSONStringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return valueJSON(s)
}

// JSONMap is a custom GORM type for map[string]any stored as JSON.
type JSONMap map[string]any

// Scan implements the sql.Scanner interface for JSONMap.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	return scanJSON(m, value)
}

// Value implements the driver.Valuer interface for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return valueJSON(m)
}

// KeyMessageList is a custom GORM type for []KeyMessage stored as JSON.
type KeyMessageList []KeyMessage

// Scan implements the sql.Scanner interface for KeyMessageList.
func (l *KeyMessageList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSON(l, value)
}

// Value implements the driver.Valuer interface for KeyMessageList.
func (l KeyMessageList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return valueJSON(l)
}

// Scan implements the sql.Scanner interface for ToneGuidelines.
func (t *ToneGuidelines) Scan(value any) error { return scanJSON(t, value) }

// Value implements the driver.Valuer interface for ToneGuidelines.
func (t ToneGuidelines) Value() (driver.Value, error) { return valueJSON(t) }

// Scan implements the sql.Scanner interface for ToneOverrides.
func (t *ToneOverrides) Scan(value any) error { return scanJSON(t, value) }

// Value implements the driver.Valuer interface for ToneOverrides.
func (t ToneOverrides) Value() (driver.Value, error) { return valueJSON(t) }

// Scan implements the sql.Scanner interface for RegulatoryMusts.
func (r *RegulatoryMusts) Scan(value any) error { return scanJSON(r, value) }

// Value implements the driver.Valuer interface for RegulatoryMusts.
func (r RegulatoryMusts) Value() (driver.Value, error) { return valueJSON(r) }

// Scan implements the sql.Scanner interface for FormatConstraints.
func (f *FormatConstraints) Scan(value any) error { return scanJSON(f, value) }

// Value implements the driver.Valuer interface for FormatConstraints.
func (f FormatConstraints) Value() (driver.Value, error) { return valueJSON(f) }

// Scan implements the sql.Scanner interface for CharacterLimits.
func (c *CharacterLimits) Scan(value any) error { return scanJSON(c, value) }

// Value implements the driver.Valuer interface for CharacterLimits.
func (c CharacterLimits) Value() (driver.Value, error) { return valueJSON(c) }

// Scan implements the sql.Scanner interface for ChannelRequirements.
func (c *ChannelRequirements) Scan(value any) error { return scanJSON(c, value) }

// Value implements the driver.Valuer interface for ChannelRequirements.
func (c ChannelRequirements) Value() (driver.Value, error) { return valueJSON(c) }

// BrandGuardrailRecord stores the root-level rule set for a brand.
// Exactly one record exists per brand_id; campaign and asset overlays
// reference it and are meaningless without it.
type BrandGuardrailRecord struct {
	ID                    string          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	BrandID               string          `gorm:"column:brand_id;uniqueIndex:idx_brand_guardrails_brand;not null" json:"brandId"`
	KeyMessages           KeyMessageList  `gorm:"column:key_messages;type:text" json:"keyMessages,omitempty"`
	ToneGuidelines        ToneGuidelines  `gorm:"column:tone_guidelines;type:text" json:"toneGuidelines"`
	ContentDos            JSONStringSlice `gorm:"column:content_dos;type:text" json:"contentDos,omitempty"`
	ContentDonts          JSONStringSlice `gorm:"column:content_donts;type:text" json:"contentDonts,omitempty"`
	RegulatoryMusts       RegulatoryMusts `gorm:"column:regulatory_musts;type:text" json:"regulatoryMusts"`
	VisualStandards       JSONMap         `gorm:"column:visual_standards;type:text" json:"visualStandards,omitempty"`
	CompetitiveAdvantages JSONStringSlice `gorm:"column:competitive_advantages;type:text" json:"competitiveAdvantages,omitempty"`
	MarketPositioning     string          `gorm:"column:market_positioning" json:"marketPositioning,omitempty"`
	CreatedBy             string          `gorm:"column:created_by" json:"createdBy,omitempty"`
	UpdatedBy             string          `gorm:"column:updated_by" json:"updatedBy,omitempty"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (BrandGuardrailRecord) TableName() string { return "brand_guardrails" }

// CampaignGuardrailRecord is the optional per-campaign overlay. Created on
// demand when a campaign needs customization; 1:1 with campaign_id.
type CampaignGuardrailRecord struct {
	ID                  string          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	BrandID             string          `gorm:"column:brand_id;index;not null" json:"brandId"`
	CampaignID          string          `gorm:"column:campaign_id;uniqueIndex:idx_campaign_guardrails_campaign;not null" json:"campaignId"`
	InheritsFromBrand   bool            `gorm:"column:inherits_from_brand;default:true" json:"inheritsFromBrand"`
	OverrideLevel       string          `gorm:"column:override_level" json:"overrideLevel,omitempty"`
	Rationale           string          `gorm:"column:rationale" json:"rationale,omitempty"`
	CustomKeyMessages   KeyMessageList  `gorm:"column:custom_key_messages;type:text" json:"customKeyMessages,omitempty"`
	ToneOverrides       ToneOverrides   `gorm:"column:tone_overrides;type:text" json:"toneOverrides,omitempty"`
	RegulatoryAdditions RegulatoryMusts `gorm:"column:regulatory_additions;type:text" json:"regulatoryAdditions,omitempty"`
	CompetitiveFocus    JSONStringSlice `gorm:"column:competitive_focus;type:text" json:"competitiveFocus,omitempty"`
	MarketSpecificRules JSONMap         `gorm:"column:market_specific_rules;type:text" json:"marketSpecificRules,omitempty"`
	CreatedBy           string          `gorm:"column:created_by" json:"createdBy,omitempty"`
	UpdatedBy           string          `gorm:"column:updated_by" json:"updatedBy,omitempty"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (CampaignGuardrailRecord) TableName() string { return "campaign_guardrails" }

// AssetGuardrailRecord is the optional per-asset overlay, the most specific
// tier. 1:1 with asset_id; campaign_id may be empty for standalone assets.
type AssetGuardrailRecord struct {
	ID                       string              `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	BrandID                  string              `gorm:"column:brand_id;index;not null" json:"brandId"`
	CampaignID               string              `gorm:"column:campaign_id;index" json:"campaignId,omitempty"`
	AssetID                  string              `gorm:"column:asset_id;uniqueIndex:idx_asset_guardrails_asset;not null" json:"assetId"`
	AssetType                string              `gorm:"column:asset_type" json:"assetType,omitempty"`
	MessageCustomizations    KeyMessageList      `gorm:"column:message_customizations;type:text" json:"messageCustomizations,omitempty"`
	ToneAdjustments          ToneOverrides       `gorm:"column:tone_adjustments;type:text" json:"toneAdjustments,omitempty"`
	FormatConstraints        FormatConstraints   `gorm:"column:format_constraints;type:text" json:"formatConstraints,omitempty"`
	CharacterLimits          CharacterLimits     `gorm:"column:character_limits;type:text" json:"characterLimits,omitempty"`
	ChannelRequirements      ChannelRequirements `gorm:"column:channel_requirements;type:text" json:"channelRequirements,omitempty"`
	RegulatoryPlacementRules JSONMap             `gorm:"column:regulatory_placement_rules;type:text" json:"regulatoryPlacementRules,omitempty"`
	ReviewOverrides          JSONMap             `gorm:"column:review_overrides;type:text" json:"reviewOverrides,omitempty"`
	CreatedBy                string              `gorm:"column:created_by" json:"createdBy,omitempty"`
	UpdatedBy                string              `gorm:"column:updated_by" json:"updatedBy,omitempty"`
	CreatedAt                time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt                time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (AssetGuardrailRecord) TableName() string { return "asset_guardrails" }
