package rules

// Merge resolves up to three guardrail tiers into a single effective rule set
// with provenance. Override priority is Asset > Campaign > Brand for every
// overridable field; fields with no override at a given tier inherit the next
// higher tier's value unchanged.
//
// The brand tier is mandatory. Campaign and asset tiers are optional overlays;
// a nil overlay means "tier not customized", never an error.
func Merge(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord, asset *AssetGuardrailRecord) (*MergedGuardrails, error) {
	if brand == nil {
		return nil, ErrMissingBrandGuardrails
	}

	merged := &MergedGuardrails{
		Brand:    brand,
		Campaign: campaign,
		Asset:    asset,
	}

	merged.EffectiveRules = EffectiveRules{
		KeyMessages:           mergeKeyMessages(brand, campaign, asset),
		ToneGuidelines:        mergeTone(brand, campaign, asset),
		ContentDos:            []string(brand.ContentDos),
		ContentDonts:          []string(brand.ContentDonts),
		RegulatoryMusts:       mergeRegulatory(brand, campaign),
		VisualStandards:       map[string]any(brand.VisualStandards),
		CompetitiveAdvantages: mergeCompetitive(brand, campaign),
		MarketPositioning:     brand.MarketPositioning,
	}

	// Format constraints, character limits, and channel requirements are
	// asset-only concerns; they exist in the merged output only when an
	// asset tier participates.
	if asset != nil {
		fc := asset.FormatConstraints
		cl := asset.CharacterLimits
		cr := asset.ChannelRequirements
		merged.EffectiveRules.FormatConstraints = &fc
		merged.EffectiveRules.CharacterLimits = &cl
		merged.EffectiveRules.ChannelRequirements = &cr
	}

	merged.RuleSources = buildRuleSources(brand, campaign, asset)
	merged.InheritanceChain = buildChain(brand, campaign, asset)

	return merged, nil
}

// mergeKeyMessages accumulates key messages most-specific-first: asset
// customizations, then campaign custom messages, then brand defaults.
// Duplicates are removed by (id, text) pair; the first occurrence wins, so a
// more specific tier wins ties.
func mergeKeyMessages(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord, asset *AssetGuardrailRecord) []KeyMessage {
	var ordered []KeyMessage
	if asset != nil {
		ordered = append(ordered, asset.MessageCustomizations...)
	}
	if campaign != nil {
		ordered = append(ordered, campaign.CustomKeyMessages...)
	}
	ordered = append(ordered, brand.KeyMessages...)

	seen := make(map[KeyMessage]bool, len(ordered))
	result := make([]KeyMessage, 0, len(ordered))
	for _, msg := range ordered {
		if seen[msg] {
			continue
		}
		seen[msg] = true
		result = append(result, msg)
	}
	return result
}

// mergeTone resolves each tone field independently: asset override, else
// campaign override, else brand value. Field-level fallback, never
// whole-object replacement.
func mergeTone(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord, asset *AssetGuardrailRecord) ToneGuidelines {
	tone := brand.ToneGuidelines

	apply := func(o *ToneOverrides) {
		if o.Primary != nil {
			tone.Primary = *o.Primary
		}
		if o.Secondary != nil {
			tone.Secondary = *o.Secondary
		}
		if len(o.Descriptors) > 0 {
			tone.Descriptors = o.Descriptors
		}
	}

	// Campaign first, then asset, so the more specific tier lands last.
	if campaign != nil {
		apply(&campaign.ToneOverrides)
	}
	if asset != nil {
		apply(&asset.ToneAdjustments)
	}
	return tone
}

// mergeRegulatory unions brand regulatory musts with campaign additions.
// No dedup is applied: duplicate disclaimers are preserved deliberately,
// since suppressing a required disclaimer is unsafe. The asset tier never
// contributes regulatory content.
func mergeRegulatory(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord) RegulatoryMusts {
	musts := RegulatoryMusts{
		Disclaimers:      append([]string{}, brand.RegulatoryMusts.Disclaimers...),
		Warnings:         append([]string{}, brand.RegulatoryMusts.Warnings...),
		RequiredLanguage: append([]string{}, brand.RegulatoryMusts.RequiredLanguage...),
	}
	if campaign != nil {
		musts.Disclaimers = append(musts.Disclaimers, campaign.RegulatoryAdditions.Disclaimers...)
		musts.Warnings = append(musts.Warnings, campaign.RegulatoryAdditions.Warnings...)
		musts.RequiredLanguage = append(musts.RequiredLanguage, campaign.RegulatoryAdditions.RequiredLanguage...)
	}
	return musts
}

// mergeCompetitive prepends the campaign's competitive focus to the brand's
// advantages. Campaigns cannot override the brand list, only supplement it.
func mergeCompetitive(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord) []string {
	var result []string
	if campaign != nil {
		result = append(result, campaign.CompetitiveFocus...)
	}
	return append(result, brand.CompetitiveAdvantages...)
}

// buildRuleSources records, per rule category, which tier ultimately supplied
// the effective value and whether any non-brand tier contributed.
func buildRuleSources(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord, asset *AssetGuardrailRecord) map[string]RuleSource {
	sources := map[string]RuleSource{
		CategoryContentStandards: {SourceLevel: TierBrand},
	}

	switch {
	case asset != nil && len(asset.MessageCustomizations) > 0:
		sources[CategoryKeyMessages] = RuleSource{SourceLevel: TierAsset, IsOverride: true}
	case campaign != nil && len(campaign.CustomKeyMessages) > 0:
		sources[CategoryKeyMessages] = RuleSource{SourceLevel: TierCampaign, IsOverride: true}
	default:
		sources[CategoryKeyMessages] = RuleSource{SourceLevel: TierBrand}
	}

	switch {
	case asset != nil && !asset.ToneAdjustments.IsZero():
		sources[CategoryToneGuidelines] = RuleSource{SourceLevel: TierAsset, IsOverride: true}
	case campaign != nil && !campaign.ToneOverrides.IsZero():
		sources[CategoryToneGuidelines] = RuleSource{SourceLevel: TierCampaign, IsOverride: true}
	default:
		sources[CategoryToneGuidelines] = RuleSource{SourceLevel: TierBrand}
	}

	if campaign != nil && campaign.RegulatoryAdditions.Len() > 0 {
		sources[CategoryRegulatoryMusts] = RuleSource{SourceLevel: TierCampaign, IsOverride: true}
	} else {
		sources[CategoryRegulatoryMusts] = RuleSource{SourceLevel: TierBrand}
	}

	if campaign != nil && len(campaign.CompetitiveFocus) > 0 {
		sources[CategoryCompetitiveAdvantages] = RuleSource{SourceLevel: TierCampaign, IsOverride: true}
	} else {
		sources[CategoryCompetitiveAdvantages] = RuleSource{SourceLevel: TierBrand}
	}

	if asset != nil {
		sources[CategoryFormatConstraints] = RuleSource{SourceLevel: TierAsset, IsOverride: true}
		sources[CategoryChannelRequirements] = RuleSource{SourceLevel: TierAsset, IsOverride: true}
	}

	return sources
}

// buildChain lists the tiers that actually participated, ordered
// brand -> campaign -> asset. Campaign and asset overlays exist only when a
// campaign or asset needs customization, so their presence implies
// customizations by definition.
func buildChain(brand *BrandGuardrailRecord, campaign *CampaignGuardrailRecord, asset *AssetGuardrailRecord) []InheritanceTier {
	chain := []InheritanceTier{
		{Level: TierBrand, ID: brand.BrandID, HasCustomizations: false},
	}
	if campaign != nil {
		chain = append(chain, InheritanceTier{Level: TierCampaign, ID: campaign.CampaignID, HasCustomizations: true})
	}
	if asset != nil {
		chain = append(chain, InheritanceTier{Level: TierAsset, ID: asset.AssetID, HasCustomizations: true})
	}
	return chain
}
