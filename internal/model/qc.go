package model

// ViolationKind classifies a QC check failure
type ViolationKind string

const (
	ViolationMissingRequired ViolationKind = "missing_required"
	ViolationBadEnum         ViolationKind = "bad_enum"
	ViolationBadType         ViolationKind = "bad_type"
	ViolationOutOfRange      ViolationKind = "out_of_range"
	ViolationBadTemperature  ViolationKind = "bad_temperature"
	ViolationBadHash         ViolationKind = "bad_hash"
	ViolationOrphanClaim     ViolationKind = "orphan_claim"
	ViolationDuplicateKey    ViolationKind = "duplicate_key"
	ViolationMissingProduct  ViolationKind = "missing_product"
	ViolationBadAggregate    ViolationKind = "bad_aggregate"
)

// Violation is one QC check failure, addressable to a row and field
type Violation struct {
	Table   string        `json:"table"`
	RowID   string        `json:"row_id"`
	Field   string        `json:"field,omitempty"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// QCReport is the complete output of a validation pass. The validator
// always finishes; any single violation makes Pass false.
type QCReport struct {
	Pass          bool        `json:"pass"`
	ProductRows   int         `json:"product_rows"`
	ClaimRows     int         `json:"claim_rows"`
	Violations    []Violation `json:"violations"`
	SchemaVersion string      `json:"schema_version,omitempty"`
}

// Add records a violation and flips the overall result
func (r *QCReport) Add(v Violation) {
	r.Pass = false
	r.Violations = append(r.Violations, v)
}

// RunSummary reconciles output counts against the intake list so that
// sample-size accounting is always possible
type RunSummary struct {
	Products         int      `json:"products"`
	Claims           int      `json:"claims"`
	RejectedRecords  int      `json:"rejected_records"`
	DroppedClaims    int      `json:"dropped_claims"`
	ReviewClaims     int      `json:"review_claims"`
	RejectedProducts []string `json:"rejected_products,omitempty"`
	OK               bool     `json:"ok"` // false if any record was rejected
}
