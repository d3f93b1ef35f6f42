package aggregate

import (
	"strings"

	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/model"
)

// Aggregator folds a product's normalized claims and its intake
// metadata into one canonical product row. The fold is pure: it reads
// a finished claim list and never mutates shared state, so products
// can be aggregated in any order or in parallel.
type Aggregator struct {
	matcher *hints.Matcher
}

// NewAggregator creates an aggregator using the given hint matcher
// for ingredient-level risk matching
func NewAggregator(matcher *hints.Matcher) *Aggregator {
	return &Aggregator{matcher: matcher}
}

// Aggregate builds the product row. A product with zero claims is
// legal and gets vacuous aggregates (false, false, 0).
func (a *Aggregator) Aggregate(intake model.IntakeRow, pageSHA256 string, claims []model.CanonicalClaim) model.CanonicalProduct {
	ingredients := normalizeIngredients(intake.IngredientsRaw)
	riskHits := a.matcher.MatchIngredients(ingredients)

	phiAny := false
	kAny := len(riskHits) > 0 // Ingredient-level K hits count independently of claims
	lMax := 0
	for _, c := range claims {
		if len(c.PhiHintIDs) > 0 {
			phiAny = true
		}
		if len(c.KHintIDs) > 0 {
			kAny = true
		}
		if c.LTokenScore > lMax {
			lMax = c.LTokenScore
		}
	}

	var weight *float64
	if intake.Cohort == model.CohortRepresentative {
		// Base weight; the weights stage refines it per stratum.
		// Targeted rows stay nil: absent means not applicable,
		// zero would mean weighted to exclude.
		w := 1.0
		weight = &w
	}

	return model.CanonicalProduct{
		ProductID:        intake.ProductID,
		Platform:         intake.Platform,
		CategoryPath:     intake.CategoryPath,
		InterventionType: intake.InterventionType,
		Title:            intake.Title,
		URL:              intake.URL,
		ArchiveURL:       intake.ArchiveURL,
		CapturedAt:       intake.CapturedAt,
		Cohort:           intake.Cohort,
		SelectionMethod:  intake.SelectionMethod,
		SamplingWeight:   weight,
		FrameVersion:     intake.FrameVersion,
		PageSHA256:       pageSHA256,
		IngredientsNorm:  ingredients,
		RiskHits:         riskHits,
		PhiAnyCandidate:  phiAny,
		KAnyCandidate:    kAny,
		LMaxTokenScore:   lMax,
	}
}

// normalizeIngredients splits a raw label ingredient string into
// lowercase trimmed entries
func normalizeIngredients(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
