package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrInvalidContentID is returned when a durable evaluation is requested with
// a content id that is not UUID-shaped. The check runs before any historical
// data is fetched; callers must fix the request rather than retry.
var ErrInvalidContentID = errors.New("content id must be a UUID")

var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// AnalyticsSource supplies historical base rates and persists prediction
// rows. *AnalyticsStore satisfies it; tests substitute fakes.
type AnalyticsSource interface {
	HistoricalData(brandID, contentType string) ([]ContentAnalyticsRecord, error)
	SavePredictions(ctx context.Context, contentID, contentType string, result *Result) error
}

// Predictor derives the four performance predictions for a piece of content.
// It is stateless: every call works from per-call locals only.
type Predictor struct {
	analytics AnalyticsSource
	cfg       *Config
	logger    *slog.Logger
}

// NewPredictor creates a Predictor. cfg may be nil for defaults.
func NewPredictor(analytics AnalyticsSource, cfg *Config, logger *slog.Logger) *Predictor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{analytics: analytics, cfg: cfg, logger: logger}
}

// historicalAggregates are the base rates derived from a brand's history.
type historicalAggregates struct {
	sampleSize     int
	approvalRate   float64
	engagementRate float64
	lowScoreShare  float64
}

// Predict runs the four sub-predictions and aggregates them.
//
// Durable (non-ephemeral) evaluations require a UUID-shaped content id; the
// validation runs before any historical fetch. Persistence is best-effort
// once scoring has succeeded: a failed save is logged, the result is still
// returned with Persisted=false.
func (p *Predictor) Predict(ctx context.Context, content, brandID string, pctx Context, complianceScore *float64) (*Result, error) {
	if !pctx.Ephemeral && !uuidShape.MatchString(pctx.ContentID) {
		return nil, fmt.Errorf("content id %q: %w", pctx.ContentID, ErrInvalidContentID)
	}

	contentType := pctx.ContentType
	if contentType == "" {
		contentType = "asset"
	}

	history, err := p.analytics.HistoricalData(brandID, contentType)
	if err != nil {
		return nil, fmt.Errorf("fetch historical data: %w", err)
	}
	agg := aggregate(history, p.cfg)

	compliance := p.cfg.DefaultComplianceScore
	if complianceScore != nil {
		compliance = *complianceScore
	}

	factors := AnalyzeContent(content)

	result := &Result{
		ContentID:            pctx.ContentID,
		ContentType:          contentType,
		HistoricalSampleSize: agg.sampleSize,
		GeneratedAt:          time.Now().UTC(),
	}

	// The four sub-predictions are independent; fan out and join.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		result.MLRApproval = predictMLRApproval(factors, compliance, agg)
	}()
	go func() {
		defer wg.Done()
		result.Engagement = predictEngagement(factors, pctx.Channel, agg, p.cfg)
	}()
	go func() {
		defer wg.Done()
		result.Risk = predictRisk(factors, contentType, agg)
	}()
	go func() {
		defer wg.Done()
		result.ABTest = predictABTest(factors)
	}()
	wg.Wait()

	var confSum float64
	for _, sub := range result.Subs() {
		confSum += sub.ConfidenceLevel
	}
	result.OverallConfidence = math.Round(confSum / 4)

	if !pctx.Ephemeral {
		if err := p.analytics.SavePredictions(ctx, pctx.ContentID, contentType, result); err != nil {
			p.logger.Error("prediction persistence failed",
				"contentId", pctx.ContentID,
				"contentType", contentType,
				"error", err)
		} else {
			result.Persisted = true
		}
	}

	return result, nil
}

// aggregate derives base rates from the historical window, falling back to
// configured defaults when no history exists.
func aggregate(history []ContentAnalyticsRecord, cfg *Config) historicalAggregates {
	agg := historicalAggregates{
		sampleSize:     len(history),
		approvalRate:   cfg.DefaultApprovalRate,
		engagementRate: cfg.DefaultEngagementRate,
	}
	if len(history) == 0 {
		return agg
	}

	approved := 0
	lowScores := 0
	var engagementSum float64
	for _, rec := range history {
		if rec.MLRApproved {
			approved++
		}
		if rec.ComplianceScore < 60 {
			lowScores++
		}
		engagementSum += rec.EngagementRate
	}

	n := float64(len(history))
	agg.approvalRate = 100 * float64(approved) / n
	agg.engagementRate = engagementSum / n
	agg.lowScoreShare = float64(lowScores) / n
	return agg
}

// predictMLRApproval forecasts the MLR review outcome from the compliance
// score, the historical approval rate, and content factors.
func predictMLRApproval(f ContentFactors, compliance float64, agg historicalAggregates) SubPrediction {
	score := compliance*0.7 + agg.approvalRate*0.3

	var indicators []string
	if f.HasRegulatoryLanguage {
		score += 10
		indicators = append(indicators, "regulatory language present")
	}
	if f.HasClinicalEvidence {
		score += 5
		indicators = append(indicators, "clinical evidence cited")
	}
	if f.HasMarketingClaims {
		score -= 15
		indicators = append(indicators, "marketing claims present")
	}
	if f.IsComplex {
		score -= 5
		indicators = append(indicators, "complex content")
	}

	score = clamp(score)
	return SubPrediction{
		Type:            TypeMLRApproval,
		PredictedScore:  score,
		ConfidenceLevel: confidenceLevel(agg.sampleSize, score),
		Indicators:      indicators,
	}
}

// predictEngagement forecasts audience engagement from the historical
// engagement base, content factors, length, and channel.
func predictEngagement(f ContentFactors, channel string, agg historicalAggregates, cfg *Config) SubPrediction {
	score := agg.engagementRate

	var indicators []string
	if f.HasCallToAction {
		score += 15
		indicators = append(indicators, "call to action present")
	}
	if f.HasEmotionalLanguage {
		score += 10
		indicators = append(indicators, "emotional language")
	}
	if f.HasPersonalization {
		score += 12
		indicators = append(indicators, "personalized language")
	}
	if f.HasVisualReferences {
		score += 8
		indicators = append(indicators, "visual element references")
	}

	switch {
	case f.WordCount >= 50 && f.WordCount <= 300:
		score += 5
		indicators = append(indicators, "optimal length")
	case f.WordCount > 500:
		score -= 10
		indicators = append(indicators, "content too long")
	case f.WordCount < 20:
		score -= 8
		indicators = append(indicators, "content too short")
	}

	if adj, ok := cfg.ChannelAdjustments[strings.ToLower(channel)]; ok && channel != "" {
		score += adj
		indicators = append(indicators, fmt.Sprintf("%s channel adjustment", strings.ToLower(channel)))
	}

	score = clamp(score)
	return SubPrediction{
		Type:            TypeEngagement,
		PredictedScore:  score,
		ConfidenceLevel: confidenceLevel(agg.sampleSize, score),
		Indicators:      indicators,
	}
}

// predictRisk estimates compliance risk. Higher is riskier.
func predictRisk(f ContentFactors, contentType string, agg historicalAggregates) SubPrediction {
	score := 20.0

	var indicators []string
	if f.HasMarketingClaims {
		score += 25
		indicators = append(indicators, "promotional claims")
	}
	if f.HasSuperlatives {
		score += 15
		indicators = append(indicators, "superlative language")
	}
	if f.HasUnapprovedClaims {
		score += 30
		indicators = append(indicators, "unapproved claim language")
	}
	if f.HasCompetitiveClaims {
		score += 20
		indicators = append(indicators, "competitive comparison")
	}
	if f.IsComplex {
		score += 10
		indicators = append(indicators, "complex content")
	}
	if !f.HasRegulatoryLanguage && contentType == "asset" {
		score += 15
		indicators = append(indicators, "missing regulatory language")
	}
	if agg.lowScoreShare >= 0.3 {
		score += 10
		indicators = append(indicators, "historically low compliance scores")
	}

	score = clamp(score)
	return SubPrediction{
		Type:            TypeRiskScore,
		PredictedScore:  score,
		ConfidenceLevel: confidenceLevel(agg.sampleSize, score),
		Indicators:      indicators,
	}
}

// predictABTest enumerates testable elements and scores how much an A/B test
// could learn. Confidence is 85 with more than two testable elements, 60
// otherwise.
func predictABTest(f ContentFactors) SubPrediction {
	var elements []string
	if f.HasCallToAction {
		elements = append(elements, "call to action")
	}
	if f.HasHeadline {
		elements = append(elements, "headline")
	}
	if f.HasEmotionalLanguage {
		elements = append(elements, "emotional tone")
	}
	if f.HasVisualReferences {
		elements = append(elements, "visual elements")
	}

	score := math.Min(100, float64(len(elements))*20+20)
	confidence := 60.0
	if len(elements) > 2 {
		confidence = 85
	}

	return SubPrediction{
		Type:            TypeABRecommendation,
		PredictedScore:  score,
		ConfidenceLevel: confidence,
		Indicators:      elements,
	}
}

// confidenceLevel derives a sub-prediction confidence from the historical
// sample size, nudged by how decisive the score is, clamped to [30,95].
func confidenceLevel(sampleSize int, score float64) float64 {
	confidence := 30.0
	switch {
	case sampleSize >= 20:
		confidence += 30
	case sampleSize >= 10:
		confidence += 20
	case sampleSize >= 5:
		confidence += 10
	}

	if score >= 80 {
		confidence += 10
	} else if score <= 40 {
		confidence -= 10
	}

	if confidence < 30 {
		confidence = 30
	}
	if confidence > 95 {
		confidence = 95
	}
	return confidence
}

// clamp bounds a score to [0,100].
func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
