package prediction

import "time"

// Type identifies one of the four sub-predictions.
type Type string

const (
	// TypeMLRApproval forecasts the Medical/Legal/Regulatory approval outcome.
	TypeMLRApproval Type = "mlr_approval"
	// TypeEngagement forecasts audience engagement.
	TypeEngagement Type = "engagement"
	// TypeRiskScore estimates compliance risk; higher means riskier.
	TypeRiskScore Type = "risk_score"
	// TypeABRecommendation scores how testable the content is.
	TypeABRecommendation Type = "ab_recommendation"
)

// Context describes the content being evaluated. Ephemeral evaluations skip
// persistence and accept any ContentID; durable ones require a UUID-shaped
// ContentID before any work begins.
type Context struct {
	ContentID   string `json:"contentId"`
	ContentType string `json:"contentType,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Ephemeral   bool   `json:"ephemeral,omitempty"`
}

// SubPrediction is one of the four independent prediction outcomes.
// Indicators name the content factors that moved the score.
type SubPrediction struct {
	Type            Type     `json:"type"`
	PredictedScore  float64  `json:"predictedScore"`
	ConfidenceLevel float64  `json:"confidenceLevel"`
	Indicators      []string `json:"indicators,omitempty"`
}

// Result aggregates the four sub-predictions for one evaluation.
type Result struct {
	ContentID            string        `json:"contentId"`
	ContentType          string        `json:"contentType"`
	MLRApproval          SubPrediction `json:"mlrApproval"`
	Engagement           SubPrediction `json:"engagement"`
	Risk                 SubPrediction `json:"riskScore"`
	ABTest               SubPrediction `json:"abRecommendation"`
	OverallConfidence    float64       `json:"overallConfidence"`
	HistoricalSampleSize int           `json:"historicalSampleSize"`
	Persisted            bool          `json:"persisted"`
	GeneratedAt          time.Time     `json:"generatedAt"`
}

// Subs returns the four sub-predictions in their canonical order.
func (r *Result) Subs() []SubPrediction {
	return []SubPrediction{r.MLRApproval, r.Engagement, r.Risk, r.ABTest}
}
