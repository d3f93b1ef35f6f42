package qc

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/tervyx/claimpipe/internal/model"
)

// WriteReportJSON writes the machine-parseable QC report
func WriteReportJSON(report *model.QCReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary writes the human-readable QC summary
func RenderSummary(w io.Writer, report *model.QCReport) {
	fmt.Fprintf(w, "Products: %d rows, Claims: %d rows\n", report.ProductRows, report.ClaimRows)

	if report.Pass {
		fmt.Fprintf(w, "✓ ALL VALIDATIONS PASSED\n")
		return
	}

	counts := make(map[model.ViolationKind]int)
	for _, v := range report.Violations {
		counts[v.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	fmt.Fprintf(w, "✗ VALIDATION FAILED (%d violations)\n", len(report.Violations))
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %-20s %d\n", kind, counts[model.ViolationKind(kind)])
	}

	// First few concrete violations for orientation
	for i, v := range report.Violations {
		if i >= 5 {
			fmt.Fprintf(w, "  ... and %d more\n", len(report.Violations)-5)
			break
		}
		fmt.Fprintf(w, "  - [%s] %s / %s: %s\n", v.Table, v.RowID, v.Field, v.Message)
	}
}

// PatternCount is one line of the pattern frequency report
type PatternCount struct {
	Gate    string
	Pattern string
	Count   int
}

// PatternReport counts how often each Φ/K hint id and L token occurs
// across the claim table, for rule-set tuning
func PatternReport(claims []model.CanonicalClaim) []PatternCount {
	phi := make(map[string]int)
	k := make(map[string]int)
	l := make(map[string]int)

	for _, c := range claims {
		for _, id := range c.PhiHintIDs {
			phi[id]++
		}
		for _, id := range c.KHintIDs {
			k[id]++
		}
		for _, token := range c.LTokens {
			l[token]++
		}
	}

	var out []PatternCount
	out = append(out, sortedCounts("phi", phi)...)
	out = append(out, sortedCounts("k", k)...)
	out = append(out, sortedCounts("l", l)...)
	return out
}

// sortedCounts orders by descending count, then pattern, so the report
// is stable across runs
func sortedCounts(gate string, counts map[string]int) []PatternCount {
	out := make([]PatternCount, 0, len(counts))
	for pattern, count := range counts {
		out = append(out, PatternCount{Gate: gate, Pattern: pattern, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// WritePatternReport writes the pattern frequencies as CSV
func WritePatternReport(path string, claims []model.CanonicalClaim) (err error) {
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
	if err := w.Write([]string{"gate", "pattern", "count"}); err != nil {
		return err
	}
	for _, pc := range PatternReport(claims) {
		if err := w.Write([]string{pc.Gate, pc.Pattern, strconv.Itoa(pc.Count)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
