package qc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/table"
)

var sha256Hex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Validator certifies the product and claim tables jointly. It reports
// every violation it finds and always completes; the caller decides
// whether to halt the pipeline on a failed report.
type Validator struct {
	claimSchema   *Schema
	productSchema *Schema
}

// NewValidator creates a validator over the given table schemas
func NewValidator(claimSchema, productSchema *Schema) *Validator {
	return &Validator{claimSchema: claimSchema, productSchema: productSchema}
}

// Validate re-reads both tables and checks structure and semantics.
// intakeIDs, when non-empty, is the discovered product id list that
// the product table must fully cover.
func (v *Validator) Validate(products, claims *table.Rows, intakeIDs []string) *model.QCReport {
	report := &model.QCReport{
		Pass:          true,
		ProductRows:   len(products.Rows),
		ClaimRows:     len(claims.Rows),
		SchemaVersion: v.claimSchema.Version,
	}

	v.checkSchema(report, "products", v.productSchema, products, "product_id")
	v.checkSchema(report, "claims", v.claimSchema, claims, "claim_id")
	v.checkTemperature(report, claims)
	v.checkReferences(report, products, claims, intakeIDs)
	v.checkAggregates(report, products, claims)

	return report
}

// checkSchema verifies every row against the declared fields:
// required presence, type parseability, enum membership, numeric
// range, and hash format
func (v *Validator) checkSchema(report *model.QCReport, tableName string, schema *Schema, rows *table.Rows, idColumn string) {
	for i, row := range rows.Rows {
		rowID := row[idColumn]
		if rowID == "" {
			rowID = fmt.Sprintf("row %d", i+1)
		}
		for _, field := range schema.Fields {
			cell, present := row[field.Name]

			if cell == "" {
				if field.Required {
					report.Add(model.Violation{
						Table: tableName, RowID: rowID, Field: field.Name,
						Kind:    model.ViolationMissingRequired,
						Message: missingMessage(present),
					})
				}
				continue
			}

			v.checkCell(report, tableName, rowID, field, cell)
		}
	}
}

func missingMessage(columnPresent bool) string {
	if !columnPresent {
		return "column absent from table"
	}
	return "required field is empty"
}

func (v *Validator) checkCell(report *model.QCReport, tableName, rowID string, field Field, cell string) {
	switch field.Type {
	case TypeInt:
		n, err := strconv.Atoi(cell)
		if err != nil {
			report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
				Kind: model.ViolationBadType, Message: fmt.Sprintf("not an integer: %q", cell)})
			return
		}
		v.checkRange(report, tableName, rowID, field, float64(n))
	case TypeFloat:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
				Kind: model.ViolationBadType, Message: fmt.Sprintf("not a number: %q", cell)})
			return
		}
		v.checkRange(report, tableName, rowID, field, f)
	case TypeBool:
		if cell != "true" && cell != "false" {
			report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
				Kind: model.ViolationBadType, Message: fmt.Sprintf("not a boolean: %q", cell)})
		}
	case TypeList:
		var items []string
		if err := json.Unmarshal([]byte(cell), &items); err != nil {
			report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
				Kind: model.ViolationBadType, Message: fmt.Sprintf("not a JSON string array: %q", cell)})
		}
	}

	if len(field.Enum) > 0 && !contains(field.Enum, cell) {
		report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
			Kind: model.ViolationBadEnum, Message: fmt.Sprintf("%q not in %v", cell, field.Enum)})
	}

	if field.Format == "sha256" && !sha256Hex.MatchString(cell) {
		report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
			Kind: model.ViolationBadHash, Message: "not a 64-char lowercase hex digest"})
	}
}

func (v *Validator) checkRange(report *model.QCReport, tableName, rowID string, field Field, value float64) {
	if field.Min != nil && value < *field.Min {
		report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
			Kind: model.ViolationOutOfRange, Message: fmt.Sprintf("%v below minimum %v", value, *field.Min)})
	}
	if field.Max != nil && value > *field.Max {
		report.Add(model.Violation{Table: tableName, RowID: rowID, Field: field.Name,
			Kind: model.ViolationOutOfRange, Message: fmt.Sprintf("%v above maximum %v", value, *field.Max)})
	}
}

// checkTemperature enforces extraction_temperature == 0 in every claim
// row. Exact zero, no epsilon: any other value means the extraction
// was non-deterministic and the whole dataset is unreproducible.
func (v *Validator) checkTemperature(report *model.QCReport, claims *table.Rows) {
	for i, row := range claims.Rows {
		rowID := rowKey(row, "claim_id", i)
		cell := row["extraction_temperature"]
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil || f != 0 {
			report.Add(model.Violation{
				Table: "claims", RowID: rowID, Field: "extraction_temperature",
				Kind:    model.ViolationBadTemperature,
				Message: fmt.Sprintf("extraction_temperature=%q, must be exactly 0", cell),
			})
		}
	}
}

// checkReferences verifies claim→product integrity and intake coverage
func (v *Validator) checkReferences(report *model.QCReport, products, claims *table.Rows, intakeIDs []string) {
	productCount := make(map[string]int, len(products.Rows))
	for _, row := range products.Rows {
		productCount[row["product_id"]]++
	}

	for id, n := range productCount {
		if n > 1 {
			report.Add(model.Violation{
				Table: "products", RowID: id, Field: "product_id",
				Kind:    model.ViolationDuplicateKey,
				Message: fmt.Sprintf("%d product rows share this id", n),
			})
		}
	}

	for i, row := range claims.Rows {
		pid := row["product_id"]
		if productCount[pid] == 0 {
			report.Add(model.Violation{
				Table: "claims", RowID: rowKey(row, "claim_id", i), Field: "product_id",
				Kind:    model.ViolationOrphanClaim,
				Message: fmt.Sprintf("no product row for %q", pid),
			})
		}
	}

	// A discovered product with zero claims is legal, a discovered
	// product with zero rows is not
	for _, id := range intakeIDs {
		if productCount[id] == 0 {
			report.Add(model.Violation{
				Table: "products", RowID: id, Field: "product_id",
				Kind:    model.ViolationMissingProduct,
				Message: "intake product has no product row",
			})
		}
	}
}

// checkAggregates recomputes the three cross-claim aggregates from the
// claim table and compares them to the stored product values. This is
// the cross-check that catches aggregation bugs.
func (v *Validator) checkAggregates(report *model.QCReport, products, claims *table.Rows) {
	type agg struct {
		phiAny bool
		kAny   bool
		lMax   int
	}
	byProduct := make(map[string]*agg)

	for _, row := range claims.Rows {
		a := byProduct[row["product_id"]]
		if a == nil {
			a = &agg{}
			byProduct[row["product_id"]] = a
		}
		if listNonEmpty(row["phi_hint_ids"]) {
			a.phiAny = true
		}
		if listNonEmpty(row["k_hint_ids"]) {
			a.kAny = true
		}
		if score, err := strconv.Atoi(row["l_token_score"]); err == nil && score > a.lMax {
			a.lMax = score
		}
	}

	for _, row := range products.Rows {
		pid := row["product_id"]
		a := byProduct[pid]
		if a == nil {
			a = &agg{}
		}

		if got, want := row["phi_any_candidate"] == "true", a.phiAny; got != want {
			report.Add(model.Violation{
				Table: "products", RowID: pid, Field: "phi_any_candidate",
				Kind:    model.ViolationBadAggregate,
				Message: fmt.Sprintf("stored %v, recomputed %v from claims", got, want),
			})
		}

		// Ingredient-level K hits contribute to k_any independently of
		// claims, so the stored flag may exceed the claim-only OR but
		// never undercut it
		ingredientK := listNonEmpty(row["risk_hits"])
		if got, want := row["k_any_candidate"] == "true", a.kAny || ingredientK; got != want {
			report.Add(model.Violation{
				Table: "products", RowID: pid, Field: "k_any_candidate",
				Kind:    model.ViolationBadAggregate,
				Message: fmt.Sprintf("stored %v, recomputed %v from claims and risk_hits", got, want),
			})
		}

		if got, err := strconv.Atoi(row["l_max_token_score"]); err == nil && got != a.lMax {
			report.Add(model.Violation{
				Table: "products", RowID: pid, Field: "l_max_token_score",
				Kind:    model.ViolationBadAggregate,
				Message: fmt.Sprintf("stored %d, recomputed %d from claims", got, a.lMax),
			})
		}
	}
}

func listNonEmpty(cell string) bool {
	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err != nil {
		return false
	}
	return len(items) > 0
}

func rowKey(row map[string]string, idColumn string, index int) string {
	if id := row[idColumn]; id != "" {
		return id
	}
	return fmt.Sprintf("row %d", index+1)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
