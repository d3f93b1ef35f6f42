// Package pipeline orchestrates the normalization stage: raw
// extraction records in, both canonical tables and a run summary out.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/tervyx/claimpipe/internal/aggregate"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/normalize"
)

// Pipeline runs normalization and aggregation over a materialized
// record set. All processing is synchronous and in-memory; each
// record is independent, so the only I/O happens at the stage
// boundary.
type Pipeline struct {
	normalizer *normalize.Normalizer
	aggregator *aggregate.Aggregator
	log        io.Writer
	verbose    bool
}

// NewPipeline creates a pipeline from its two stage processors.
// Progress output goes to log when verbose is set.
func NewPipeline(normalizer *normalize.Normalizer, aggregator *aggregate.Aggregator, log io.Writer, verbose bool) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		aggregator: aggregator,
		log:        log,
		verbose:    verbose,
	}
}

// Result holds both output tables and the reconciliation summary
type Result struct {
	Products []model.CanonicalProduct
	Claims   []model.CanonicalClaim
	Summary  model.RunSummary
}

// Run normalizes every record and folds each product's claims into
// its product row. Records are processed in input order so output is
// byte-identical across runs. Rejected records produce no rows, are
// counted, and flip the run's OK flag; the run itself continues.
func (p *Pipeline) Run(records []model.RawExtractionRecord, intakeTable *intake.Table) *Result {
	result := &Result{Summary: model.RunSummary{OK: true}}

	for _, rec := range records {
		meta, known := intakeTable.Get(rec.ProductID)
		if !known {
			// A record outside the intake list has no discovery
			// metadata and no place in the sampling frame
			p.reject(result, rec.ProductID, "product not in intake list")
			continue
		}

		claims, stats, err := p.normalizer.NormalizeRecord(rec)
		if err != nil {
			var rejected *normalize.RecordRejectedError
			if errors.As(err, &rejected) {
				p.reject(result, rejected.ProductID, rejected.Reason)
				continue
			}
			p.reject(result, rec.ProductID, err.Error())
			continue
		}

		result.Summary.DroppedClaims += stats.DroppedClaims
		result.Summary.ReviewClaims += stats.ReviewClaims

		product := p.aggregator.Aggregate(meta, rec.PageSHA256, claims)
		result.Products = append(result.Products, product)
		result.Claims = append(result.Claims, claims...)

		if p.verbose {
			fmt.Fprintf(p.log, "  %s: %d claims (%d dropped, %d review)\n",
				rec.ProductID, len(claims), stats.DroppedClaims, stats.ReviewClaims)
		}
	}

	result.Summary.Products = len(result.Products)
	result.Summary.Claims = len(result.Claims)
	return result
}

// RejectLines feeds intake-stage rejects (e.g. malformed JSONL lines)
// into the summary
func (p *Pipeline) RejectLines(result *Result, messages []string) {
	for _, msg := range messages {
		p.reject(result, "", msg)
	}
}

func (p *Pipeline) reject(result *Result, productID, reason string) {
	result.Summary.RejectedRecords++
	result.Summary.OK = false
	if productID != "" {
		result.Summary.RejectedProducts = append(result.Summary.RejectedProducts, productID)
	}
	fmt.Fprintf(p.log, "  ✗ rejected %s: %s\n", orUnknown(productID), reason)
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
