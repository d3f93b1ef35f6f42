// Package intake reads the product/URL discovery table and the
// sampling plan, and computes representative-cohort weights.
package intake

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tervyx/claimpipe/internal/model"
)

// Columns is the intake table header, in file order
var Columns = []string{
	"product_id",
	"platform",
	"category_path",
	"intervention_type",
	"title",
	"url",
	"archive_url",
	"captured_at",
	"cohort",
	"selection_method",
	"sampling_frame_version",
	"ingredients_raw",
}

// Table is the loaded intake list, keyed by product id with the
// original file order preserved
type Table struct {
	Order []string
	Rows  map[string]model.IntakeRow
}

// Read loads the intake CSV. Duplicate product ids are an input error:
// the intake list is the sampling frame and must key uniquely.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open intake: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read intake: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("intake %s: empty file", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		index[col] = i
	}
	for _, col := range []string{"product_id", "cohort"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("intake %s: missing column %q", path, col)
		}
	}

	cell := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	t := &Table{Rows: make(map[string]model.IntakeRow, len(records)-1)}
	for n, rec := range records[1:] {
		row := model.IntakeRow{
			ProductID:        cell(rec, "product_id"),
			Platform:         cell(rec, "platform"),
			CategoryPath:     cell(rec, "category_path"),
			InterventionType: cell(rec, "intervention_type"),
			Title:            cell(rec, "title"),
			URL:              cell(rec, "url"),
			ArchiveURL:       cell(rec, "archive_url"),
			CapturedAt:       cell(rec, "captured_at"),
			Cohort:           model.Cohort(cell(rec, "cohort")),
			SelectionMethod:  cell(rec, "selection_method"),
			FrameVersion:     cell(rec, "sampling_frame_version"),
			IngredientsRaw:   cell(rec, "ingredients_raw"),
		}
		if row.ProductID == "" {
			return nil, fmt.Errorf("intake %s row %d: empty product_id", path, n+1)
		}
		if !model.ValidCohort(string(row.Cohort)) {
			return nil, fmt.Errorf("intake %s row %d: bad cohort %q", path, n+1, row.Cohort)
		}
		if _, dup := t.Rows[row.ProductID]; dup {
			return nil, fmt.Errorf("intake %s row %d: duplicate product_id %q", path, n+1, row.ProductID)
		}
		t.Order = append(t.Order, row.ProductID)
		t.Rows[row.ProductID] = row
	}
	return t, nil
}

// Get returns the intake row for a product id
func (t *Table) Get(productID string) (model.IntakeRow, bool) {
	row, ok := t.Rows[productID]
	return row, ok
}
