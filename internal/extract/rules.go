package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/tervyx/claimpipe/internal/model"
)

// RulesProvider is the keyword-based fallback used when no API key is
// configured. Cruder than the LLM path but fully deterministic.
type RulesProvider struct {
	pattern *regexp.Regexp
}

var claimKeywords = []string{
	"proven", "clinically", "guaranteed", "effective", "results",
	"cure", "treat", "prevent", "relieve", "reduce",
	"improve", "boost", "enhance", "support", "promote",
	`\d+%`, "instant", "fast", "quick", "immediate",
}

// NewRulesProvider creates the rule-based extraction provider
func NewRulesProvider() *RulesProvider {
	return &RulesProvider{
		pattern: regexp.MustCompile("(?i)" + strings.Join(claimKeywords, "|")),
	}
}

// Name returns the provider name stamped into extraction metadata
func (p *RulesProvider) Name() string {
	return "rules-v1"
}

// Extract scans section sentences for claim-typical language
func (p *RulesProvider) Extract(_ context.Context, sections []Section) ([]model.RawClaim, error) {
	var claims []model.RawClaim
	seen := make(map[string]bool)

	for _, section := range sections {
		for _, sentence := range splitSentences(section.Text) {
			if !p.pattern.MatchString(sentence) {
				continue
			}
			key := strings.ToLower(sentence)
			if seen[key] {
				continue
			}
			seen[key] = true
			claims = append(claims, model.RawClaim{
				Text:      sentence,
				ClaimType: string(model.ClaimTypeEfficacy),
				Source:    string(model.SourceText),
			})
		}
	}
	return claims, nil
}

// splitSentences splits on sentence terminators, keeping only chunks
// of plausible sentence length
func splitSentences(text string) []string {
	parts := regexp.MustCompile(`[.!?]+`).Split(text, -1)
	var sentences []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 10 && len(part) <= 500 {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
