package model

// Cohort identifies which sample a product belongs to
type Cohort string

const (
	// CohortRepresentative is the population-estimation sample; rows carry a sampling weight
	CohortRepresentative Cohort = "R"
	// CohortTargeted is the stress-test sample for rare/risky cases; rows are unweighted
	CohortTargeted Cohort = "T"
)

// ValidCohort reports whether s is a member of the cohort enumeration
func ValidCohort(s string) bool {
	return Cohort(s) == CohortRepresentative || Cohort(s) == CohortTargeted
}

// IntakeRow is one row of the product/URL intake table, keyed by
// product id. It supplies discovery metadata not present in the raw
// extraction output.
type IntakeRow struct {
	ProductID        string `json:"product_id"`
	Platform         string `json:"platform"`
	CategoryPath     string `json:"category_path"`
	InterventionType string `json:"intervention_type"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	ArchiveURL       string `json:"archive_url"`
	CapturedAt       string `json:"captured_at"`
	Cohort           Cohort `json:"cohort"`
	SelectionMethod  string `json:"selection_method"`
	FrameVersion     string `json:"sampling_frame_version"`
	IngredientsRaw   string `json:"ingredients_raw,omitempty"`
}

// CanonicalProduct is one row of the product table. Created once by
// the aggregator from one raw record plus its normalized claims,
// immutable thereafter.
type CanonicalProduct struct {
	ProductID        string `json:"product_id"`
	Platform         string `json:"platform"`
	CategoryPath     string `json:"category_path"`
	InterventionType string `json:"intervention_type"`
	Title            string `json:"product_title"`
	URL              string `json:"product_url"`
	ArchiveURL       string `json:"archive_url"`
	CapturedAt       string `json:"captured_at"`

	Cohort          Cohort   `json:"sampling_cohort"`
	SelectionMethod string   `json:"selection_method"`
	SamplingWeight  *float64 `json:"sampling_weight"` // nil for the targeted cohort, never zero
	FrameVersion    string   `json:"sampling_frame_version"`

	PageSHA256      string   `json:"page_sha256"`
	IngredientsNorm []string `json:"ingredients_norm"`
	RiskHits        []string `json:"risk_hits"` // Ingredient-level K hint ids

	PhiAnyCandidate bool `json:"phi_any_candidate"`
	KAnyCandidate   bool `json:"k_any_candidate"`
	LMaxTokenScore  int  `json:"l_max_token_score"`
}
