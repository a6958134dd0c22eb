package compliance

// CheckRequest describes one compliance check over a piece of content.
// CampaignID and AssetID are optional; a missing tier means "not customized".
// AssetType is informational and is recorded on the history row.
type CheckRequest struct {
	Content     string `json:"content"`
	BrandID     string `json:"brandId"`
	CampaignID  string `json:"campaignId,omitempty"`
	AssetID     string `json:"assetId,omitempty"`
	AssetType   string `json:"assetType,omitempty"`
	ContentID   string `json:"contentId,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// BrandCompliance is the brand-tier evaluation result.
type BrandCompliance struct {
	Score                float64  `json:"score"`
	ToneMatch            float64  `json:"toneMatch"`
	KeyMessageAlignment  float64  `json:"keyMessageAlignment"`
	RegulatoryCompliance float64  `json:"regulatoryCompliance"`
	Suggestions          []string `json:"suggestions,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}

// CampaignCompliance is the campaign-tier evaluation result, present only
// when the campaign has a guardrail overlay.
type CampaignCompliance struct {
	Score                    float64 `json:"score"`
	MessagePriorityAdherence bool    `json:"messagePriorityAdherence"`
	AudienceToneMatch        bool    `json:"audienceToneMatch"`
	CompetitivePositioning   bool    `json:"competitivePositioning"`
}

// AssetCompliance is the asset-tier evaluation result, present only when the
// asset has a guardrail overlay.
type AssetCompliance struct {
	Score                    float64 `json:"score"`
	FormatAdherence          bool    `json:"formatAdherence"`
	CharacterLimitCompliance bool    `json:"characterLimitCompliance"`
}

// CriticalIssue flags a violation severe enough to block publication.
type CriticalIssue struct {
	Type        string `json:"type"`
	Level       string `json:"level"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// RecommendedAction is a prioritized remediation step. Actions are emitted in
// fixed priority order: brand-level actions precede asset-level ones.
type RecommendedAction struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
}

// ReviewForecast is the lightweight review outlook embedded in every check.
type ReviewForecast struct {
	MLRApprovalLikelihood float64  `json:"mlrApprovalLikelihood"`
	EstimatedReviewCycles int      `json:"estimatedReviewCycles"`
	RiskFactors           []string `json:"riskFactors,omitempty"`
}

// CheckResult is the full multi-tier compliance check outcome.
type CheckResult struct {
	ContentID          string              `json:"contentId"`
	ContentType        string              `json:"contentType"`
	OverallScore       float64             `json:"overallScore"`
	Brand              BrandCompliance     `json:"brandCompliance"`
	Campaign           *CampaignCompliance `json:"campaignCompliance,omitempty"`
	Asset              *AssetCompliance    `json:"assetCompliance,omitempty"`
	CriticalIssues     []CriticalIssue     `json:"criticalIssues,omitempty"`
	RecommendedActions []RecommendedAction `json:"recommendedActions,omitempty"`
	Forecast           ReviewForecast      `json:"reviewForecast"`
	HasOverrides       bool                `json:"hasOverrides"`
	HistoryRecorded    bool                `json:"historyRecorded"`
}
