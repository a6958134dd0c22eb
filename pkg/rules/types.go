package rules

// TierLevel identifies one of the three guardrail tiers.
type TierLevel string

const (
	// TierBrand is the root tier; exactly one record exists per brand.
	TierBrand TierLevel = "brand"
	// TierCampaign is the optional per-campaign overlay.
	TierCampaign TierLevel = "campaign"
	// TierAsset is the optional per-asset overlay, the most specific tier.
	TierAsset TierLevel = "asset"
)

// KeyMessage is a single approved messaging point.
type KeyMessage struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// ToneGuidelines describes the brand voice.
type ToneGuidelines struct {
	Primary     string   `json:"primary" yaml:"primary"`
	Secondary   string   `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Descriptors []string `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
}

// ToneOverrides carries field-level tone overrides for a lower tier.
// Nil fields inherit the next-higher tier's value unchanged.
type ToneOverrides struct {
	Primary     *string  `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary   *string  `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Descriptors []string `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
}

// IsZero reports whether the override carries no customizations.
func (t *ToneOverrides) IsZero() bool {
	return t == nil || (t.Primary == nil && t.Secondary == nil && len(t.Descriptors) == 0)
}

// RegulatoryMusts holds mandatory regulatory content. Entries are never
// deduplicated: suppressing a required disclaimer is unsafe.
type RegulatoryMusts struct {
	Disclaimers      []string `json:"disclaimers,omitempty" yaml:"disclaimers,omitempty"`
	Warnings         []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	RequiredLanguage []string `json:"requiredLanguage,omitempty" yaml:"requiredLanguage,omitempty"`
}

// Len returns the total number of mandatory entries across all three lists.
func (r RegulatoryMusts) Len() int {
	return len(r.Disclaimers) + len(r.Warnings) + len(r.RequiredLanguage)
}

// FormatConstraints are asset-tier structural requirements for content.
type FormatConstraints struct {
	RequiredSections   []string `json:"requiredSections,omitempty" yaml:"requiredSections,omitempty"`
	ProhibitedElements []string `json:"prohibitedElements,omitempty" yaml:"prohibitedElements,omitempty"`
}

// CharacterLimits bounds content length per slot. Nil means unbounded.
type CharacterLimits struct {
	Headline *int `json:"headline,omitempty" yaml:"headline,omitempty"`
	Body     *int `json:"body,omitempty" yaml:"body,omitempty"`
	CTA      *int `json:"cta,omitempty" yaml:"cta,omitempty"`
}

// ChannelRequirements captures per-channel delivery specs for an asset.
type ChannelRequirements struct {
	Channel string         `json:"channel,omitempty" yaml:"channel,omitempty"`
	Specs   map[string]any `json:"specs,omitempty" yaml:"specs,omitempty"`
}

// EffectiveRules is the fully-resolved rule set after inheritance merge.
// Asset-only fields are nil when no asset tier participated.
type EffectiveRules struct {
	KeyMessages           []KeyMessage         `json:"keyMessages"`
	ToneGuidelines        ToneGuidelines       `json:"toneGuidelines"`
	ContentDos            []string             `json:"contentDos,omitempty"`
	ContentDonts          []string             `json:"contentDonts,omitempty"`
	RegulatoryMusts       RegulatoryMusts      `json:"regulatoryMusts"`
	VisualStandards       map[string]any       `json:"visualStandards,omitempty"`
	CompetitiveAdvantages []string             `json:"competitiveAdvantages,omitempty"`
	MarketPositioning     string               `json:"marketPositioning,omitempty"`
	FormatConstraints     *FormatConstraints   `json:"formatConstraints,omitempty"`
	CharacterLimits       *CharacterLimits     `json:"characterLimits,omitempty"`
	ChannelRequirements   *ChannelRequirements `json:"channelRequirements,omitempty"`
}

// RuleSource records which tier ultimately supplied a rule category and
// whether that represents an override over brand defaults.
type RuleSource struct {
	SourceLevel TierLevel `json:"sourceLevel"`
	IsOverride  bool      `json:"isOverride"`
}

// InheritanceTier is one entry of the resolved inheritance chain.
type InheritanceTier struct {
	Level             TierLevel `json:"level"`
	ID                string    `json:"id"`
	HasCustomizations bool      `json:"hasCustomizations"`
}

// MergedGuardrails is the derived (never persisted) merge result.
type MergedGuardrails struct {
	Brand            *BrandGuardrailRecord    `json:"brand"`
	Campaign         *CampaignGuardrailRecord `json:"campaign,omitempty"`
	Asset            *AssetGuardrailRecord    `json:"asset,omitempty"`
	EffectiveRules   EffectiveRules           `json:"effectiveRules"`
	RuleSources      map[string]RuleSource    `json:"ruleSources"`
	InheritanceChain []InheritanceTier        `json:"inheritanceChain"`
}

// Rule category keys used in MergedGuardrails.RuleSources.
const (
	CategoryKeyMessages           = "key_messages"
	CategoryToneGuidelines        = "tone_guidelines"
	CategoryRegulatoryMusts       = "regulatory_musts"
	CategoryCompetitiveAdvantages = "competitive_advantages"
	CategoryContentStandards      = "content_standards"
	CategoryFormatConstraints     = "format_constraints"
	CategoryChannelRequirements   = "channel_requirements"
)
