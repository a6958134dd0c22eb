package prediction

import (
	"regexp"
	"strings"
)

// ContentFactors is the result of textual content-factor analysis. All
// detection is case-insensitive keyword and phrase matching; the factor set
// feeds every sub-prediction.
type ContentFactors struct {
	WordCount             int
	HasRegulatoryLanguage bool
	HasClinicalEvidence   bool
	HasMarketingClaims    bool
	HasUnapprovedClaims   bool
	HasSuperlatives       bool
	HasCompetitiveClaims  bool
	HasCallToAction       bool
	HasEmotionalLanguage  bool
	HasPersonalization    bool
	HasVisualReferences   bool
	HasHeadline           bool
	IsComplex             bool
}

var (
	regulatoryTerms = []string{
		"side effects", "consult your doctor", "prescribing information",
		"contraindication", "adverse reactions", "indication", "fda",
		"boxed warning", "safety information",
	}
	clinicalTerms = []string{
		"clinical trial", "clinical study", "efficacy", "statistically significant",
		"randomized", "placebo", "endpoint", "study data",
	}
	marketingTerms = []string{
		"best", "superior", "leading", "#1", "most effective", "proven results",
		"breakthrough", "revolutionary",
	}
	unapprovedTerms = []string{
		"cure", "miracle", "guarantee",
	}
	superlativeTerms = []string{
		"best", "greatest", "ultimate", "perfect", "unmatched", "unrivaled",
	}
	competitiveTerms = []string{
		"better than", "compared to", "versus", "outperforms", "vs.",
	}
	ctaTerms = []string{
		"learn more", "sign up", "contact us", "visit", "ask your doctor",
		"request a sample", "talk to your", "get started",
	}
	emotionalTerms = []string{
		"hope", "confidence", "freedom", "relief", "trust", "peace of mind",
		"reassurance", "empower",
	}
	visualTerms = []string{
		"chart", "graph", "image", "video", "infographic", "see figure",
		"illustration", "diagram",
	}
	pharmacokineticTerms = []string{
		"pharmacokinetic", "half-life", "bioavailability", "metabolism",
		"clearance", "auc", "cmax", "steady-state",
	}
)

var personalPattern = regexp.MustCompile(`\byou\b|\byour\b`)

// AnalyzeContent derives the content factors for a piece of free text.
func AnalyzeContent(content string) ContentFactors {
	lower := strings.ToLower(content)
	wordCount := len(strings.Fields(content))

	factors := ContentFactors{
		WordCount:             wordCount,
		HasRegulatoryLanguage: containsAny(lower, regulatoryTerms),
		HasClinicalEvidence:   containsAny(lower, clinicalTerms),
		HasMarketingClaims:    containsAny(lower, marketingTerms),
		HasUnapprovedClaims:   containsAny(lower, unapprovedTerms),
		HasSuperlatives:       containsAny(lower, superlativeTerms),
		HasCompetitiveClaims:  containsAny(lower, competitiveTerms),
		HasCallToAction:       containsAny(lower, ctaTerms),
		HasEmotionalLanguage:  containsAny(lower, emotionalTerms),
		HasPersonalization:    personalPattern.MatchString(lower),
		HasVisualReferences:   containsAny(lower, visualTerms),
		HasHeadline:           hasHeadline(content),
	}

	// Dense pharmacokinetic copy over 300 words reads as complex to both
	// reviewers and audiences.
	factors.IsComplex = wordCount > 300 && containsAny(lower, pharmacokineticTerms)

	return factors
}

// containsAny reports whether any term appears in the lowercased content.
func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// hasHeadline treats a short leading line followed by more content as a
// headline.
func hasHeadline(content string) bool {
	lines := strings.SplitN(strings.TrimSpace(content), "\n", 2)
	if len(lines) < 2 {
		return false
	}
	first := strings.TrimSpace(lines[0])
	return first != "" && len(first) <= 80 && !strings.HasSuffix(first, ".")
}
