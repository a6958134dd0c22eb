package prediction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeContent_FactorDetection(t *testing.T) {
	content := "Ask your doctor about our clinical trial results. " +
		"See full safety information and side effects. Learn more today."

	factors := AnalyzeContent(content)

	assert.True(t, factors.HasRegulatoryLanguage)
	assert.True(t, factors.HasClinicalEvidence)
	assert.True(t, factors.HasCallToAction)
	assert.True(t, factors.HasPersonalization)
	assert.False(t, factors.HasMarketingClaims)
	assert.False(t, factors.HasUnapprovedClaims)
	assert.False(t, factors.HasCompetitiveClaims)
	assert.Equal(t, 18, factors.WordCount)
}

func TestAnalyzeContent_RiskFactors(t *testing.T) {
	factors := AnalyzeContent("This treatment is the best and guarantees a cure.")

	assert.True(t, factors.HasMarketingClaims)
	assert.True(t, factors.HasSuperlatives)
	assert.True(t, factors.HasUnapprovedClaims)
	assert.False(t, factors.HasRegulatoryLanguage)
}

func TestAnalyzeContent_PersonalizationIsWordBounded(t *testing.T) {
	// "younger" must not count as personalization.
	assert.False(t, AnalyzeContent("Results in younger populations vary.").HasPersonalization)
	assert.True(t, AnalyzeContent("Talk with your care team.").HasPersonalization)
}

func TestAnalyzeContent_Headline(t *testing.T) {
	withHeadline := "New Treatment Option\nThe body of the email describes the treatment in detail."
	assert.True(t, AnalyzeContent(withHeadline).HasHeadline)

	// A leading sentence ending in a period is body copy, not a headline.
	sentenceFirst := "This is a sentence.\nMore body follows."
	assert.False(t, AnalyzeContent(sentenceFirst).HasHeadline)

	singleLine := "Only one line of content here"
	assert.False(t, AnalyzeContent(singleLine).HasHeadline)
}

func TestAnalyzeContent_ComplexityNeedsLengthAndDensity(t *testing.T) {
	short := "The half-life and bioavailability profile is favorable."
	assert.False(t, AnalyzeContent(short).IsComplex)

	long := "The pharmacokinetic profile shows favorable bioavailability. "
	for len(strings.Fields(long)) <= 300 {
		long += "Additional descriptive wording about the formulation and dosing schedule. "
	}
	assert.True(t, AnalyzeContent(long).IsComplex)
}
