package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/model"
)

// RecordRejectedError means an entire raw record was refused and
// produced no output. The run continues for other records.
type RecordRejectedError struct {
	ProductID string
	Reason    string
}

func (e *RecordRejectedError) Error() string {
	return fmt.Sprintf("record %s rejected: %s", e.ProductID, e.Reason)
}

// RecordStats accounts for per-claim drops and review flags within one record
type RecordStats struct {
	RawClaims     int
	DroppedClaims int // Empty verbatim text
	ReviewClaims  int
}

// Normalizer turns raw extraction records into canonical claim rows.
// It holds only immutable configuration and is safe for concurrent use.
type Normalizer struct {
	matcher *hints.Matcher
	cfg     model.NormalizeConfig
	gates   []gateRule
}

// NewNormalizer creates a normalizer with the given matcher and thresholds
func NewNormalizer(matcher *hints.Matcher, cfg model.NormalizeConfig) *Normalizer {
	return &Normalizer{
		matcher: matcher,
		cfg:     cfg,
		gates:   gateTable(cfg.LHardThreshold, cfg.LSoftThreshold),
	}
}

// NormalizeRecord produces one canonical claim per usable raw claim,
// in raw order. A non-zero extraction temperature rejects the whole
// record: deterministic extraction is a hard precondition and a
// partial result would be unreproducible.
func (n *Normalizer) NormalizeRecord(rec model.RawExtractionRecord) ([]model.CanonicalClaim, RecordStats, error) {
	stats := RecordStats{RawClaims: len(rec.Claims)}

	if rec.ProductID == "" {
		return nil, stats, &RecordRejectedError{ProductID: "(unknown)", Reason: "missing product_id"}
	}
	if rec.Extraction.Temperature != 0 {
		return nil, stats, &RecordRejectedError{
			ProductID: rec.ProductID,
			Reason:    fmt.Sprintf("extraction_temperature=%v, must be exactly 0", rec.Extraction.Temperature),
		}
	}

	claims := make([]model.CanonicalClaim, 0, len(rec.Claims))
	for i, raw := range rec.Claims {
		if strings.TrimSpace(raw.Text) == "" {
			// Empty verbatim text carries nothing to match against;
			// the claim is dropped and counted, never padded out
			stats.DroppedClaims++
			continue
		}

		claim := n.normalizeClaim(rec, raw, i)
		if claim.ReviewNeeded {
			stats.ReviewClaims++
		}
		claims = append(claims, claim)
	}

	return claims, stats, nil
}

// normalizeClaim builds one canonical claim. ordinal is the claim's
// position in the raw record so ids stay byte-identical across runs.
func (n *Normalizer) normalizeClaim(rec model.RawExtractionRecord, raw model.RawClaim, ordinal int) model.CanonicalClaim {
	trimmed := strings.TrimSpace(raw.Text)
	res := n.matcher.Match(trimmed)

	claimType := model.ClaimType(raw.ClaimType)
	typeUnknown := !model.ValidClaimType(raw.ClaimType)
	if typeUnknown {
		// Fall back to the most generic applicable type
		claimType = model.ClaimTypeEfficacy
	}

	source := model.SourceChannel(raw.Source)
	if source != model.SourceImage {
		source = model.SourceText
	}

	review := typeUnknown || len(trimmed) < n.cfg.MinClaimTextChars
	if source == model.SourceImage && raw.OCRConfidence != nil && *raw.OCRConfidence < n.cfg.MinOCRConfidence {
		review = true
	}

	return model.CanonicalClaim{
		ProductID:       rec.ProductID,
		ClaimID:         fmt.Sprintf("%s_c%04d", rec.ProductID, ordinal),
		TextVerbatim:    raw.Text,
		ClaimType:       claimType,
		ImpliedOut:      raw.ImpliedOutcome,
		Quantifier:      raw.Quantifier,
		Source:          source,
		ExtractionModel: rec.Extraction.Model,
		ExtractionTemp:  rec.Extraction.Temperature,
		ClaimSHA256:     hashText(trimmed),
		PageSHA256:      rec.PageSHA256,
		PhiHintIDs:      res.PhiIDs,
		KHintIDs:        res.KIDs,
		LTokens:         res.LTokens,
		LTokenScore:     res.LScore,
		GateHint:        resolveGate(n.gates, res),
		ReviewNeeded:    review,
	}
}

// hashText returns the lowercase hex sha256 of s
func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
