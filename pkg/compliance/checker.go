package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// RuleResolver resolves guardrail tiers into an effective rule set.
// *rules.Store satisfies it; tests substitute fakes.
type RuleResolver interface {
	GetMerged(brandID, campaignID, assetID string) (*rules.MergedGuardrails, error)
}

// Checker evaluates content against merged guardrails and records an
// append-only history row per check.
type Checker struct {
	rules   RuleResolver
	history *HistoryStore
	logger  *slog.Logger
}

// NewChecker creates a Checker. history may be nil, in which case no audit
// rows are written.
func NewChecker(resolver RuleResolver, history *HistoryStore, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{rules: resolver, history: history, logger: logger}
}

// Check runs the full multi-tier compliance evaluation. The overall score is
// the arithmetic mean of exactly the tier scores that are present: brand
// always, campaign and asset only when their overlays exist.
//
// Rule fetch errors propagate to the caller; the history write is
// best-effort and never fails the check.
func (c *Checker) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if req.BrandID == "" {
		return nil, fmt.Errorf("brandId is required")
	}

	merged, err := c.rules.GetMerged(req.BrandID, req.CampaignID, req.AssetID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
	}
	if result.ContentID == "" {
		result.ContentID = uuid.New().String()
	}
	if result.ContentType == "" {
		result.ContentType = "asset"
	}

	result.Brand = evaluateBrand(req.Content, merged.Brand)

	scores := []float64{result.Brand.Score}
	if merged.Campaign != nil {
		campaign := evaluateCampaign(req.Content, merged.Campaign)
		result.Campaign = &campaign
		scores = append(scores, campaign.Score)
	}
	if merged.Asset != nil {
		asset := evaluateAsset(req.Content, merged.Asset)
		result.Asset = &asset
		scores = append(scores, asset.Score)
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	result.OverallScore = sum / float64(len(scores))

	result.HasOverrides = merged.Campaign != nil || merged.Asset != nil
	result.CriticalIssues = criticalIssues(result)
	result.RecommendedActions = recommendedActions(result)
	result.Forecast = reviewForecast(result)

	c.recordHistory(ctx, req, result)

	return result, nil
}

// evaluateCampaign scores content against the campaign overlay. Each of the
// three dimensions that the overlay actually customizes must hold; a
// dimension the campaign leaves untouched passes vacuously. The tier score
// starts at 100 and loses 15 per failed dimension.
func evaluateCampaign(content string, campaign *rules.CampaignGuardrailRecord) CampaignCompliance {
	lower := strings.ToLower(content)

	result := CampaignCompliance{
		MessagePriorityAdherence: true,
		AudienceToneMatch:        true,
		CompetitivePositioning:   true,
	}

	if len(campaign.CustomKeyMessages) > 0 {
		aligned := 0
		for _, msg := range campaign.CustomKeyMessages {
			if messageAligned(lower, msg.Text) {
				aligned++
			}
		}
		// Priority messages adhere when at least half are represented.
		result.MessagePriorityAdherence = aligned*2 >= len(campaign.CustomKeyMessages)
	}

	if !campaign.ToneOverrides.IsZero() {
		var terms []string
		if campaign.ToneOverrides.Primary != nil {
			terms = append(terms, strings.ToLower(*campaign.ToneOverrides.Primary))
		}
		if campaign.ToneOverrides.Secondary != nil {
			terms = append(terms, strings.ToLower(*campaign.ToneOverrides.Secondary))
		}
		for _, d := range campaign.ToneOverrides.Descriptors {
			terms = append(terms, strings.ToLower(d))
		}
		matched := 0
		for _, term := range terms {
			if term != "" && strings.Contains(lower, term) {
				matched++
			}
		}
		result.AudienceToneMatch = len(terms) == 0 || matched > 0
	}

	if len(campaign.CompetitiveFocus) > 0 {
		found := false
		for _, focus := range campaign.CompetitiveFocus {
			if focus != "" && strings.Contains(lower, strings.ToLower(focus)) {
				found = true
				break
			}
		}
		result.CompetitivePositioning = found
	}

	score := 100.0
	if !result.MessagePriorityAdherence {
		score -= 15
	}
	if !result.AudienceToneMatch {
		score -= 15
	}
	if !result.CompetitivePositioning {
		score -= 15
	}
	result.Score = clampScore(score)

	return result
}

// evaluateAsset scores content against the asset overlay. Format adherence
// requires every required section to appear case-insensitively and no
// prohibited element to appear. Character limit compliance bounds the content
// length by character_limits.body when set. The tier score starts at 90,
// loses 20 on a format failure and 15 on a limit failure, floored at 0.
func evaluateAsset(content string, asset *rules.AssetGuardrailRecord) AssetCompliance {
	lower := strings.ToLower(content)

	result := AssetCompliance{
		FormatAdherence:          true,
		CharacterLimitCompliance: true,
	}

	for _, section := range asset.FormatConstraints.RequiredSections {
		if section != "" && !strings.Contains(lower, strings.ToLower(section)) {
			result.FormatAdherence = false
			break
		}
	}
	if result.FormatAdherence {
		for _, prohibited := range asset.FormatConstraints.ProhibitedElements {
			if prohibited != "" && strings.Contains(lower, strings.ToLower(prohibited)) {
				result.FormatAdherence = false
				break
			}
		}
	}

	if limit := asset.CharacterLimits.Body; limit != nil && len(content) > *limit {
		result.CharacterLimitCompliance = false
	}

	score := 90.0
	if !result.FormatAdherence {
		score -= 20
	}
	if !result.CharacterLimitCompliance {
		score -= 15
	}
	result.Score = clampScore(score)

	return result
}

// criticalIssues applies the single defined critical-issue rule: brand
// regulatory compliance below 50 blocks publication. Additional issue types
// are an extension point, not an omission.
func criticalIssues(result *CheckResult) []CriticalIssue {
	var issues []CriticalIssue
	if result.Brand.RegulatoryCompliance < 50 {
		issues = append(issues, CriticalIssue{
			Type:        "regulatory",
			Level:       "brand",
			Severity:    "high",
			Description: "Brand regulatory compliance is below the acceptable threshold; mandatory disclaimers or warnings are missing.",
		})
	}
	return issues
}

// recommendedActions emits remediation steps in fixed order: the brand-level
// action always precedes the asset-level one.
func recommendedActions(result *CheckResult) []RecommendedAction {
	var actions []RecommendedAction
	if result.Brand.Score < 80 {
		actions = append(actions, RecommendedAction{
			Priority: 1,
			Action:   "Improve brand compliance: align content with key messages, tone, and regulatory requirements",
		})
	}
	if result.Asset != nil && !result.Asset.FormatAdherence {
		actions = append(actions, RecommendedAction{
			Priority: 2,
			Action:   "Adjust content to meet asset format constraints",
		})
	}
	return actions
}

// reviewForecast derives the embedded review outlook from the tier scores.
func reviewForecast(result *CheckResult) ReviewForecast {
	forecast := ReviewForecast{
		MLRApprovalLikelihood: result.OverallScore + 10,
	}
	if forecast.MLRApprovalLikelihood > 95 {
		forecast.MLRApprovalLikelihood = 95
	}

	switch {
	case result.OverallScore > 80:
		forecast.EstimatedReviewCycles = 1
	case result.OverallScore > 60:
		forecast.EstimatedReviewCycles = 2
	default:
		forecast.EstimatedReviewCycles = 3
	}

	if result.OverallScore < 70 {
		forecast.RiskFactors = append(forecast.RiskFactors, "overall compliance below review threshold")
	}
	if len(result.Brand.Warnings) > 0 {
		forecast.RiskFactors = append(forecast.RiskFactors, "brand-level warnings present")
	}
	if result.Asset != nil && !result.Asset.FormatAdherence {
		forecast.RiskFactors = append(forecast.RiskFactors, "asset format constraints unmet")
	}

	return forecast
}

// recordHistory appends the audit row for a completed check. Best-effort:
// a failed write is logged and the computed result is still returned.
func (c *Checker) recordHistory(ctx context.Context, req CheckRequest, result *CheckResult) {
	if c.history == nil {
		return
	}

	record := &ComplianceHistoryRecord{
		ID:                 uuid.New().String(),
		ContentID:          result.ContentID,
		ContentType:        result.ContentType,
		BrandID:            req.BrandID,
		CampaignID:         req.CampaignID,
		AssetID:            req.AssetID,
		AssetType:          req.AssetType,
		OverallScore:       result.OverallScore,
		BrandScore:         result.Brand.Score,
		Warnings:           rules.JSONStringSlice(result.Brand.Warnings),
		Suggestions:        rules.JSONStringSlice(result.Brand.Suggestions),
		CriticalIssueCount: len(result.CriticalIssues),
		HasOverrides:       result.HasOverrides,
	}
	if result.Campaign != nil {
		score := result.Campaign.Score
		record.CampaignScore = &score
	}
	if result.Asset != nil {
		score := result.Asset.Score
		record.AssetScore = &score
	}

	if err := c.history.Append(ctx, record); err != nil {
		c.logger.Error("compliance history write failed",
			"contentId", result.ContentID,
			"brandId", req.BrandID,
			"error", err)
		return
	}
	result.HistoryRecorded = true
}
