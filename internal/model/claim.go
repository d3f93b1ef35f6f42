package model

// RawClaim is one claim exactly as the extraction stage produced it
type RawClaim struct {
	Text           string   `json:"text"`                      // Verbatim claim text, byte-identical to the page
	ClaimType      string   `json:"claim_type"`                // efficacy, safety, mechanism, medical
	ImpliedOutcome string   `json:"implied_outcome,omitempty"` // e.g. "sleep_quality", "hair_growth"
	Quantifier     string   `json:"quantifier,omitempty"`      // e.g. "87%", "in 2 weeks"
	Source         string   `json:"source"`                    // text or image
	OCRConfidence  *float64 `json:"ocr_confidence,omitempty"`  // Present only for image-sourced claims
}

// ExtractionMeta records how a product's raw claims were produced
type ExtractionMeta struct {
	Model       string  `json:"model"`       // Extraction model name
	Version     string  `json:"version"`     // Prompt/rule version
	Temperature float64 `json:"temperature"` // Must be exactly 0
	ExtractedAt string  `json:"extracted_at,omitempty"`
}

// RawExtractionRecord is one line of the extraction JSONL:
// one product, zero or more raw claims, plus extraction metadata
type RawExtractionRecord struct {
	ProductID  string         `json:"product_id"`
	PageSHA256 string         `json:"page_sha256"`
	Claims     []RawClaim     `json:"claims"`
	Extraction ExtractionMeta `json:"extraction"`
}

// ClaimType categorizes the nature of a claim
type ClaimType string

const (
	ClaimTypeEfficacy  ClaimType = "efficacy"
	ClaimTypeSafety    ClaimType = "safety"
	ClaimTypeMechanism ClaimType = "mechanism"
	ClaimTypeMedical   ClaimType = "medical"
)

// ValidClaimType reports whether s is a member of the claim-type enumeration
func ValidClaimType(s string) bool {
	switch ClaimType(s) {
	case ClaimTypeEfficacy, ClaimTypeSafety, ClaimTypeMechanism, ClaimTypeMedical:
		return true
	}
	return false
}

// SourceChannel identifies where a claim's text came from
type SourceChannel string

const (
	SourceText  SourceChannel = "text"
	SourceImage SourceChannel = "image"
)

// GateHint is the single resolved classification attached to a claim.
// It is consumed, never generated, by the downstream policy engine.
type GateHint string

const (
	GatePhiCandidate GateHint = "phi_candidate"
	GateKCandidate   GateHint = "k_candidate"
	GateLHard        GateHint = "l_hard"
	GateLSoft        GateHint = "l_soft"
	GateNone         GateHint = "none"
)

// CanonicalClaim is one row of the claim table, derived 1:1 from a
// RawClaim plus its parent product. Created once by the normalizer,
// immutable thereafter.
type CanonicalClaim struct {
	ProductID    string        `json:"product_id"`
	ClaimID      string        `json:"claim_id"` // {product_id}_c{ordinal}, stable across runs
	TextVerbatim string        `json:"claim_text_verbatim"`
	ClaimType    ClaimType     `json:"claim_type"`
	ImpliedOut   string        `json:"implied_outcome"`
	Quantifier   string        `json:"quantifier"`
	Source       SourceChannel `json:"source"`

	ExtractionModel string  `json:"extraction_model"`
	ExtractionTemp  float64 `json:"extraction_temperature"` // Always 0.0 on success

	ClaimSHA256 string `json:"claim_sha256"` // sha256 of the trimmed verbatim text
	PageSHA256  string `json:"page_sha256"`

	PhiHintIDs  []string `json:"phi_hint_ids"`
	KHintIDs    []string `json:"k_hint_ids"`
	LTokens     []string `json:"l_tokens"`
	LTokenScore int      `json:"l_token_score"` // Sum of matched token weights

	GateHint     GateHint `json:"gate_hint"`
	ReviewNeeded bool     `json:"review_needed"`
}
