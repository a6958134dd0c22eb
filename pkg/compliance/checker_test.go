package compliance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// fakeResolver returns a canned merge result and counts calls.
type fakeResolver struct {
	merged *rules.MergedGuardrails
	err    error
	calls  int
}

func (f *fakeResolver) GetMerged(brandID, campaignID, assetID string) (*rules.MergedGuardrails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.merged, nil
}

func newTestHistoryStore(t *testing.T) *HistoryStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := NewHistoryStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func brandOnlyMerged(brand *rules.BrandGuardrailRecord) *rules.MergedGuardrails {
	return &rules.MergedGuardrails{
		Brand: brand,
		InheritanceChain: []rules.InheritanceTier{
			{Level: rules.TierBrand, ID: brand.BrandID},
		},
	}
}

func TestCheck_RequiresBrandID(t *testing.T) {
	resolver := &fakeResolver{}
	checker := NewChecker(resolver, nil, nil)

	_, err := checker.Check(context.Background(), CheckRequest{Content: "text"})
	require.Error(t, err)
	assert.Zero(t, resolver.calls)
}

func TestCheck_FetchErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{
		err: fmt.Errorf("brand b-1: %w", rules.ErrMissingBrandGuardrails),
	}
	checker := NewChecker(resolver, nil, nil)

	_, err := checker.Check(context.Background(), CheckRequest{Content: "text", BrandID: "b-1"})
	require.ErrorIs(t, err, rules.ErrMissingBrandGuardrails)
}

func TestCheck_StoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection reset")
	resolver := &fakeResolver{err: dbErr}
	checker := NewChecker(resolver, nil, nil)

	_, err := checker.Check(context.Background(), CheckRequest{Content: "text", BrandID: "b-1"})
	require.ErrorIs(t, err, dbErr)
}

func TestCheck_BrandOnlyDefaults(t *testing.T) {
	resolver := &fakeResolver{
		merged: brandOnlyMerged(&rules.BrandGuardrailRecord{BrandID: "b-1"}),
	}
	checker := NewChecker(resolver, nil, nil)

	result, err := checker.Check(context.Background(), CheckRequest{Content: "text", BrandID: "b-1"})
	require.NoError(t, err)

	// Generated identifiers when the caller supplies none.
	_, parseErr := uuid.Parse(result.ContentID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "asset", result.ContentType)

	assert.Equal(t, 100.0, result.OverallScore)
	assert.Nil(t, result.Campaign)
	assert.Nil(t, result.Asset)
	assert.False(t, result.HasOverrides)
	assert.False(t, result.HistoryRecorded)
	assert.Empty(t, result.CriticalIssues)
	assert.Empty(t, result.RecommendedActions)
	assert.Equal(t, 95.0, result.Forecast.MLRApprovalLikelihood)
	assert.Equal(t, 1, result.Forecast.EstimatedReviewCycles)
}

func TestCheck_OverallIsMeanOfPresentTiers(t *testing.T) {
	merged := brandOnlyMerged(&rules.BrandGuardrailRecord{BrandID: "b-1"})
	merged.Asset = &rules.AssetGuardrailRecord{
		AssetID: "a-1",
		BrandID: "b-1",
		FormatConstraints: rules.FormatConstraints{
			RequiredSections: []string{"dosage"},
		},
	}
	resolver := &fakeResolver{merged: merged}
	checker := NewChecker(resolver, nil, nil)

	result, err := checker.Check(context.Background(), CheckRequest{
		Content: "Take twice daily with food.",
		BrandID: "b-1",
		AssetID: "a-1",
	})
	require.NoError(t, err)

	// Brand tier has no rules (100); asset misses its required section
	// (90 - 20 = 70). The overall score averages only present tiers.
	assert.Equal(t, 100.0, result.Brand.Score)
	require.NotNil(t, result.Asset)
	assert.Equal(t, 70.0, result.Asset.Score)
	assert.False(t, result.Asset.FormatAdherence)
	assert.Equal(t, 85.0, result.OverallScore)
	assert.True(t, result.HasOverrides)

	require.Len(t, result.RecommendedActions, 1)
	assert.Equal(t, 2, result.RecommendedActions[0].Priority)
	assert.Contains(t, result.Forecast.RiskFactors, "asset format constraints unmet")
}

func TestCheck_CriticalIssueOnLowRegulatory(t *testing.T) {
	resolver := &fakeResolver{
		merged: brandOnlyMerged(&rules.BrandGuardrailRecord{
			BrandID: "b-1",
			RegulatoryMusts: rules.RegulatoryMusts{
				Disclaimers: []string{"See full prescribing information"},
				Warnings:    []string{"May cause dizziness"},
			},
		}),
	}
	checker := NewChecker(resolver, nil, nil)

	result, err := checker.Check(context.Background(), CheckRequest{
		Content: "Plain marketing copy with no mandatory language.",
		BrandID: "b-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Brand.RegulatoryCompliance)
	require.Len(t, result.CriticalIssues, 1)
	assert.Equal(t, "regulatory", result.CriticalIssues[0].Type)
	assert.Equal(t, "brand", result.CriticalIssues[0].Level)
	assert.Equal(t, "high", result.CriticalIssues[0].Severity)

	// Brand score (100+100+0)/3 ~ 66.67: the brand remediation action
	// leads, and the forecast flags both risk factors.
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, 1, result.RecommendedActions[0].Priority)
	assert.Equal(t, 2, result.Forecast.EstimatedReviewCycles)
	assert.Contains(t, result.Forecast.RiskFactors, "overall compliance below review threshold")
	assert.Contains(t, result.Forecast.RiskFactors, "brand-level warnings present")
}

func TestCheck_AppendsHistoryRow(t *testing.T) {
	merged := brandOnlyMerged(&rules.BrandGuardrailRecord{BrandID: "b-1"})
	merged.Campaign = &rules.CampaignGuardrailRecord{CampaignID: "c-1", BrandID: "b-1"}
	resolver := &fakeResolver{merged: merged}

	history := newTestHistoryStore(t)
	checker := NewChecker(resolver, history, nil)

	contentID := uuid.New().String()
	result, err := checker.Check(context.Background(), CheckRequest{
		Content:    "text",
		BrandID:    "b-1",
		CampaignID: "c-1",
		AssetType:  "email",
		ContentID:  contentID,
	})
	require.NoError(t, err)
	assert.True(t, result.HistoryRecorded)

	records, _, total, err := history.ListByContent(contentID, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)

	row := records[0]
	assert.Equal(t, contentID, row.ContentID)
	assert.Equal(t, "b-1", row.BrandID)
	assert.Equal(t, "c-1", row.CampaignID)
	assert.Equal(t, "email", row.AssetType)
	assert.Equal(t, result.OverallScore, row.OverallScore)
	assert.Equal(t, result.Brand.Score, row.BrandScore)
	require.NotNil(t, row.CampaignScore)
	assert.Equal(t, result.Campaign.Score, *row.CampaignScore)
	assert.Nil(t, row.AssetScore)
	assert.True(t, row.HasOverrides)
}

func TestEvaluateCampaign_AllDimensions(t *testing.T) {
	campaign := &rules.CampaignGuardrailRecord{
		CampaignID: "c-1",
		BrandID:    "b-1",
		CustomKeyMessages: rules.KeyMessageList{
			{ID: "km-c1", Text: "Rapid symptom relief"},
			{ID: "km-c2", Text: "Convenient dosing schedule"},
		},
		ToneOverrides:    rules.ToneOverrides{Primary: strPtr("urgent")},
		CompetitiveFocus: rules.JSONStringSlice{"faster onset"},
	}

	pass := evaluateCampaign("Urgent news: rapid symptom relief with faster onset of action.", campaign)
	assert.True(t, pass.MessagePriorityAdherence)
	assert.True(t, pass.AudienceToneMatch)
	assert.True(t, pass.CompetitivePositioning)
	assert.Equal(t, 100.0, pass.Score)

	fail := evaluateCampaign("Generic product description.", campaign)
	assert.False(t, fail.MessagePriorityAdherence)
	assert.False(t, fail.AudienceToneMatch)
	assert.False(t, fail.CompetitivePositioning)
	assert.Equal(t, 55.0, fail.Score)
}

func TestEvaluateCampaign_UncustomizedDimensionsPass(t *testing.T) {
	campaign := &rules.CampaignGuardrailRecord{CampaignID: "c-1", BrandID: "b-1"}

	result := evaluateCampaign("Anything.", campaign)
	assert.True(t, result.MessagePriorityAdherence)
	assert.True(t, result.AudienceToneMatch)
	assert.True(t, result.CompetitivePositioning)
	assert.Equal(t, 100.0, result.Score)
}

func TestEvaluateAsset_Scoring(t *testing.T) {
	limit := 30
	asset := &rules.AssetGuardrailRecord{
		AssetID: "a-1",
		BrandID: "b-1",
		FormatConstraints: rules.FormatConstraints{
			RequiredSections:   []string{"dosage"},
			ProhibitedElements: []string{"pricing"},
		},
		CharacterLimits: rules.CharacterLimits{Body: &limit},
	}

	pass := evaluateAsset("DOSAGE: take once daily.", asset)
	assert.True(t, pass.FormatAdherence)
	assert.True(t, pass.CharacterLimitCompliance)
	assert.Equal(t, 90.0, pass.Score)

	missingSection := evaluateAsset("Take once every day.", asset)
	assert.False(t, missingSection.FormatAdherence)
	assert.Equal(t, 70.0, missingSection.Score)

	prohibited := evaluateAsset("Dosage info plus pricing.", asset)
	assert.False(t, prohibited.FormatAdherence)
	assert.Equal(t, 70.0, prohibited.Score)

	overLimit := evaluateAsset("Dosage guidance that runs well past the limit.", asset)
	assert.True(t, overLimit.FormatAdherence)
	assert.False(t, overLimit.CharacterLimitCompliance)
	assert.Equal(t, 75.0, overLimit.Score)

	bothFail := evaluateAsset("Pricing-led copy that runs well past the configured limit.", asset)
	assert.Equal(t, 55.0, bothFail.Score)
}

func strPtr(s string) *string { return &s }
