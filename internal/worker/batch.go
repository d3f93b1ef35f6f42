package worker

import (
	"context"
	"sort"

	"github.com/tervyx/claimpipe/internal/model"
)

// PageFetcher fetches one product page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// RecordExtractor turns one fetched page into a raw extraction record
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, productID, pageHTML string) (model.RawExtractionRecord, error)
}

// ProductJob fetches and extracts one intake product
type ProductJob struct {
	Index     int // Position in the intake list, for stable output order
	Row       model.IntakeRow
	Fetcher   PageFetcher
	Extractor RecordExtractor
}

// ProductResult is the outcome of one product job
type ProductResult struct {
	Index     int
	ProductID string
	Record    model.RawExtractionRecord
	Err       error
}

// GetError returns the job error, if any
func (r *ProductResult) GetError() error {
	return r.Err
}

// Execute fetches the product page and extracts its raw claims
func (j *ProductJob) Execute(ctx context.Context) Result {
	res := &ProductResult{Index: j.Index, ProductID: j.Row.ProductID}

	page, err := j.Fetcher.FetchPage(ctx, j.Row.URL)
	if err != nil {
		res.Err = err
		return res
	}

	record, err := j.Extractor.ExtractRecord(ctx, j.Row.ProductID, page)
	if err != nil {
		res.Err = err
		return res
	}

	res.Record = record
	return res
}

// BatchRunner fans fetch+extract jobs across a worker pool. No data
// dependency crosses product boundaries, so any concurrency level is
// correct; results come back in intake order regardless.
type BatchRunner struct {
	fetcher     PageFetcher
	extractor   RecordExtractor
	concurrency int
}

// NewBatchRunner creates a batch runner
func NewBatchRunner(fetcher PageFetcher, extractor RecordExtractor, concurrency int) *BatchRunner {
	return &BatchRunner{
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Run processes every intake row and returns results in intake order
func (b *BatchRunner) Run(rows []model.IntakeRow) []*ProductResult {
	pool := NewPool(b.concurrency)
	pool.Start()

	// Submission runs concurrently with collection so a batch larger
	// than the bounded queues cannot stall against slow workers
	go func() {
		for i, row := range rows {
			pool.Submit(&ProductJob{
				Index:     i,
				Row:       row,
				Fetcher:   b.fetcher,
				Extractor: b.extractor,
			})
		}
		pool.Close()
	}()

	raw := pool.Collect()
	results := make([]*ProductResult, 0, len(raw))
	for _, r := range raw {
		if pr, ok := r.(*ProductResult); ok {
			results = append(results, pr)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}
