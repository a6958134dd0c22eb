package compliance

import (
	"fmt"
	"strings"

	"github.com/pharmalign/guardrails/pkg/rules"
)

// evaluateBrand scores content against the brand tier with deterministic
// keyword and phrase matching. All matching is case-insensitive.
//
// Sub-scores:
//   - key message alignment: share of key messages with at least one
//     significant word (5+ characters) present in the content
//   - tone match: share of tone terms (primary, secondary, descriptors)
//     present, scaled onto 50-100 so a total miss still scores 50
//   - regulatory compliance: share of mandatory disclaimers, warnings, and
//     required language phrases present verbatim
//
// The tier score is the mean of the three, minus 10 per prohibited phrase
// from the brand's content_donts found in the content, floored at 0.
func evaluateBrand(content string, brand *rules.BrandGuardrailRecord) BrandCompliance {
	lower := strings.ToLower(content)

	result := BrandCompliance{}

	// Key message alignment.
	aligned := 0
	for _, msg := range brand.KeyMessages {
		if messageAligned(lower, msg.Text) {
			aligned++
		} else {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Consider incorporating key message: %s", msg.Text))
		}
	}
	if len(brand.KeyMessages) == 0 {
		result.KeyMessageAlignment = 100
	} else {
		result.KeyMessageAlignment = 100 * float64(aligned) / float64(len(brand.KeyMessages))
	}

	// Tone match.
	toneTerms := toneTerms(brand.ToneGuidelines)
	if len(toneTerms) == 0 {
		result.ToneMatch = 100
	} else {
		matched := 0
		for _, term := range toneTerms {
			if strings.Contains(lower, term) {
				matched++
			}
		}
		result.ToneMatch = 50 + 50*float64(matched)/float64(len(toneTerms))
		if result.ToneMatch < 70 && brand.ToneGuidelines.Primary != "" {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Adjust language to reflect the %s brand tone", brand.ToneGuidelines.Primary))
		}
	}

	// Regulatory compliance: every mandatory phrase must appear verbatim.
	var required []string
	required = append(required, brand.RegulatoryMusts.Disclaimers...)
	required = append(required, brand.RegulatoryMusts.Warnings...)
	required = append(required, brand.RegulatoryMusts.RequiredLanguage...)
	if len(required) == 0 {
		result.RegulatoryCompliance = 100
	} else {
		present := 0
		for _, phrase := range required {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				present++
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Missing required regulatory language: %s", phrase))
			}
		}
		result.RegulatoryCompliance = 100 * float64(present) / float64(len(required))
	}

	// Prohibited phrases from content_donts.
	violations := 0
	for _, dont := range brand.ContentDonts {
		if dont != "" && strings.Contains(lower, strings.ToLower(dont)) {
			violations++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Content contains prohibited phrase: %s", dont))
		}
	}

	score := (result.ToneMatch+result.KeyMessageAlignment+result.RegulatoryCompliance)/3 - 10*float64(violations)
	result.Score = clampScore(score)

	return result
}

// messageAligned reports whether any significant word (5+ characters) of the
// key message appears in the lowercased content.
func messageAligned(lowerContent, message string) bool {
	for _, word := range strings.Fields(strings.ToLower(message)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if len(word) >= 5 && strings.Contains(lowerContent, word) {
			return true
		}
	}
	return false
}

// toneTerms collects the matchable tone vocabulary, lowercased.
func toneTerms(tone rules.ToneGuidelines) []string {
	var terms []string
	if tone.Primary != "" {
		terms = append(terms, strings.ToLower(tone.Primary))
	}
	if tone.Secondary != "" {
		terms = append(terms, strings.ToLower(tone.Secondary))
	}
	for _, d := range tone.Descriptors {
		if d != "" {
			terms = append(terms, strings.ToLower(d))
		}
	}
	return terms
}

// clampScore bounds a score to [0,100].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
