package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tervyx/claimpipe/internal/model"
)

// Rows is a loaded table: raw cell values by column name, in file order
type Rows struct {
	Header []string
	Rows   []map[string]string
}

// ReadRows loads a CSV table keeping every cell as its raw string, so
// validation can inspect exactly what was written
func ReadRows(path string) (*Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty table, missing header", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return &Rows{Header: header, Rows: rows}, nil
}

// ReadClaims loads and types the claim table
func ReadClaims(path string) ([]model.CanonicalClaim, error) {
	raw, err := ReadRows(path)
	if err != nil {
		return nil, err
	}

	claims := make([]model.CanonicalClaim, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		c, err := ParseClaimRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// ReadProducts loads and types the product table
func ReadProducts(path string) ([]model.CanonicalProduct, error) {
	raw, err := ReadRows(path)
	if err != nil {
		return nil, err
	}

	products := make([]model.CanonicalProduct, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		p, err := ParseProductRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// ParseClaimRow types one claim row
func ParseClaimRow(row map[string]string) (model.CanonicalClaim, error) {
	temp, err := parseFloat(row["extraction_temperature"])
	if err != nil {
		return model.CanonicalClaim{}, fmt.Errorf("extraction_temperature: %w", err)
	}
	score, err := parseInt(row["l_token_score"])
	if err != nil {
		return model.CanonicalClaim{}, fmt.Errorf("l_token_score: %w", err)
	}
	phi, err := decodeList(row["phi_hint_ids"])
	if err != nil {
		return model.CanonicalClaim{}, fmt.Errorf("phi_hint_ids: %w", err)
	}
	k, err := decodeList(row["k_hint_ids"])
	if err != nil {
		return model.CanonicalClaim{}, fmt.Errorf("k_hint_ids: %w", err)
	}
	tokens, err := decodeList(row["l_tokens"])
	if err != nil {
		return model.CanonicalClaim{}, fmt.Errorf("l_tokens: %w", err)
	}

	return model.CanonicalClaim{
		ProductID:       row["product_id"],
		ClaimID:         row["claim_id"],
		TextVerbatim:    row["claim_text_verbatim"],
		ClaimType:       model.ClaimType(row["claim_type"]),
		ImpliedOut:      row["implied_outcome"],
		Quantifier:      row["quantifier"],
		Source:          model.SourceChannel(row["source"]),
		ExtractionModel: row["extraction_model"],
		ExtractionTemp:  temp,
		ClaimSHA256:     row["claim_sha256"],
		PageSHA256:      row["page_sha256"],
		PhiHintIDs:      phi,
		KHintIDs:        k,
		LTokens:         tokens,
		LTokenScore:     score,
		GateHint:        model.GateHint(row["gate_hint"]),
		ReviewNeeded:    row["review_needed"] == "true",
	}, nil
}

// ParseProductRow types one product row
func ParseProductRow(row map[string]string) (model.CanonicalProduct, error) {
	lMax, err := parseInt(row["l_max_token_score"])
	if err != nil {
		return model.CanonicalProduct{}, fmt.Errorf("l_max_token_score: %w", err)
	}
	ingredients, err := decodeList(row["ingredients_norm"])
	if err != nil {
		return model.CanonicalProduct{}, fmt.Errorf("ingredients_norm: %w", err)
	}
	riskHits, err := decodeList(row["risk_hits"])
	if err != nil {
		return model.CanonicalProduct{}, fmt.Errorf("risk_hits: %w", err)
	}

	var weight *float64
	if row["sampling_weight"] != "" {
		w, err := parseFloat(row["sampling_weight"])
		if err != nil {
			return model.CanonicalProduct{}, fmt.Errorf("sampling_weight: %w", err)
		}
		weight = &w
	}

	return model.CanonicalProduct{
		ProductID:        row["product_id"],
		Platform:         row["platform"],
		CategoryPath:     row["category_path"],
		InterventionType: row["intervention_type"],
		Title:            row["product_title"],
		URL:              row["product_url"],
		ArchiveURL:       row["archive_url"],
		CapturedAt:       row["captured_at"],
		Cohort:           model.Cohort(row["sampling_cohort"]),
		SelectionMethod:  row["selection_method"],
		SamplingWeight:   weight,
		FrameVersion:     row["sampling_frame_version"],
		PageSHA256:       row["page_sha256"],
		IngredientsNorm:  ingredients,
		RiskHits:         riskHits,
		PhiAnyCandidate:  row["phi_any_candidate"] == "true",
		KAnyCandidate:    row["k_any_candidate"] == "true",
		LMaxTokenScore:   lMax,
	}, nil
}

func decodeList(cell string) ([]string, error) {
	if cell == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err != nil {
		return nil, fmt.Errorf("bad list cell %q: %w", cell, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
