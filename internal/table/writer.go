// Package table reads and writes the two output tables. Both are CSV
// with a header row; list-valued cells hold a JSON array so every
// list uses one encoding across the whole table.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tervyx/claimpipe/internal/model"
)

// ClaimColumns is the claim table header, in output order
var ClaimColumns = []string{
	"product_id",
	"claim_id",
	"claim_text_verbatim",
	"claim_type",
	"implied_outcome",
	"quantifier",
	"source",
	"extraction_model",
	"extraction_temperature",
	"claim_sha256",
	"page_sha256",
	"phi_hint_ids",
	"k_hint_ids",
	"l_tokens",
	"l_token_score",
	"gate_hint",
	"review_needed",
}

// ProductColumns is the product table header, in output order
var ProductColumns = []string{
	"product_id",
	"platform",
	"category_path",
	"intervention_type",
	"product_title",
	"product_url",
	"archive_url",
	"captured_at",
	"sampling_cohort",
	"selection_method",
	"sampling_weight",
	"sampling_frame_version",
	"page_sha256",
	"ingredients_norm",
	"risk_hits",
	"phi_any_candidate",
	"k_any_candidate",
	"l_max_token_score",
}

// WriteClaims writes the claim table to path
func WriteClaims(path string, claims []model.CanonicalClaim) error {
	rows := make([][]string, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, []string{
			c.ProductID,
			c.ClaimID,
			c.TextVerbatim,
			string(c.ClaimType),
			c.ImpliedOut,
			c.Quantifier,
			string(c.Source),
			c.ExtractionModel,
			formatFloat(c.ExtractionTemp),
			c.ClaimSHA256,
			c.PageSHA256,
			encodeList(c.PhiHintIDs),
			encodeList(c.KHintIDs),
			encodeList(c.LTokens),
			strconv.Itoa(c.LTokenScore),
			string(c.GateHint),
			strconv.FormatBool(c.ReviewNeeded),
		})
	}
	return writeCSV(path, ClaimColumns, rows)
}

// WriteProducts writes the product table to path
func WriteProducts(path string, products []model.CanonicalProduct) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		weight := ""
		if p.SamplingWeight != nil {
			weight = formatFloat(*p.SamplingWeight)
		}
		rows = append(rows, []string{
			p.ProductID,
			p.Platform,
			p.CategoryPath,
			p.InterventionType,
			p.Title,
			p.URL,
			p.ArchiveURL,
			p.CapturedAt,
			string(p.Cohort),
			p.SelectionMethod,
			weight,
			p.FrameVersion,
			p.PageSHA256,
			encodeList(p.IngredientsNorm),
			encodeList(p.RiskHits),
			strconv.FormatBool(p.PhiAnyCandidate),
			strconv.FormatBool(p.KAnyCandidate),
			strconv.Itoa(p.LMaxTokenScore),
		})
	}
	return writeCSV(path, ProductColumns, rows)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// encodeList encodes a list cell; nil encodes as the empty array so
// every list cell parses the same way
func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// formatFloat renders floats without exponent noise; 0 stays "0"
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
