package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/cache"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/pipeline"
	"github.com/tervyx/claimpipe/internal/worker"
)

var (
	fetchIntake      string
	fetchConcurrency int
	fetchCacheDir    string
	fetchRate        float64
	fetchTimeoutFlag time.Duration
)

// fetchJob warms the page cache for one intake product
type fetchJob struct {
	row     model.IntakeRow
	fetcher *pipeline.Fetcher
}

// fetchJobResult is the outcome of one cache-warming fetch
type fetchJobResult struct {
	productID string
	bytes     int
	err       error
}

func (r *fetchJobResult) GetError() error { return r.err }

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	page, err := j.fetcher.FetchPage(ctx, j.row.URL)
	return &fetchJobResult{productID: j.row.ProductID, bytes: len(page), err: err}
}

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every intake product page into the cache",
	Long: `Fetch warms the page cache for every intake product, honoring
robots.txt and per-domain rate limits. A later extract run over the
same intake then reads from the cache instead of the marketplace.

Example:
  claimpipe fetch --intake product_urls.csv --concurrency 4`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchIntake, "intake", "", "product/URL intake CSV (required)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 4, "number of concurrent workers")
	fetchCmd.Flags().StringVar(&fetchCacheDir, "cache-dir", ".claimpipe-cache", "page cache directory")
	fetchCmd.Flags().Float64Var(&fetchRate, "rate", 0.5, "requests per second per domain")
	fetchCmd.Flags().DurationVar(&fetchTimeoutFlag, "timeout", 30*time.Second, "per-page fetch timeout")
	_ = fetchCmd.MarkFlagRequired("intake")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = fetchTimeoutFlag
	cfg.HTTP.RatePerHost = fetchRate
	cfg.Cache.Dir = fetchCacheDir

	intakeTable, err := intake.Read(fetchIntake)
	if err != nil {
		return fmt.Errorf("load intake: %w", err)
	}

	pages := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	fetcher := pipeline.NewFetcher(cfg.HTTP, pages)

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching %d products (%d workers)\n",
			len(intakeTable.Order), fetchConcurrency)
	}

	pool := worker.NewPool(fetchConcurrency)
	pool.Start()
	go func() {
		for _, id := range intakeTable.Order {
			pool.Submit(&fetchJob{row: intakeTable.Rows[id], fetcher: fetcher})
		}
		pool.Close()
	}()

	failed := 0
	fetched := 0
	for _, res := range pool.Collect() {
		fr, ok := res.(*fetchJobResult)
		if !ok {
			continue
		}
		if fr.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", fr.productID, fr.err)
			continue
		}
		fetched++
		if verbose {
			fmt.Fprintf(os.Stderr, "  %s: %d bytes\n", fr.productID, fr.bytes)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Cached %d/%d product pages → %s\n",
		fetched, len(intakeTable.Order), cfg.Cache.Dir)
	if failed > 0 {
		return fmt.Errorf("%d products failed to fetch", failed)
	}
	return nil
}
