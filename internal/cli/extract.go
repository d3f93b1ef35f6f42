package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/cache"
	"github.com/tervyx/claimpipe/internal/extract"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/pipeline"
	"github.com/tervyx/claimpipe/internal/worker"
)

var (
	extractIntake   string
	extractOut      string
	extractProvider string
	extractModel    string
	extractVersion  string
	concurrency     int
	fetchTimeout    time.Duration
	userAgent       string
	noCache         bool
	cacheDir        string
	ratePerHost     float64
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch product pages and extract raw claims (temperature 0)",
	Long: `Extract fetches every intake product page — honoring robots.txt,
per-domain rate limits, and the page cache — and runs the extraction
model over it at temperature 0. The model returns verbatim claim
text only; no judgment happens at this stage.

Without an API key the deterministic rule-based extractor is used.

Example:
  claimpipe extract --intake product_urls.csv --out claims_raw.jsonl
  claimpipe extract --intake product_urls.csv --out claims_raw.jsonl \
    --provider openai --model gpt-4o-mini --concurrency 8`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractIntake, "intake", "", "product/URL intake CSV (required)")
	extractCmd.Flags().StringVar(&extractOut, "out", "claims_raw.jsonl", "raw extraction JSONL output path")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "rules", "extraction provider (openai, rules)")
	extractCmd.Flags().StringVar(&extractModel, "model", "gpt-4o-mini", "extraction model name")
	extractCmd.Flags().StringVar(&extractVersion, "extraction-version", "v1", "prompt/rule version stamped into records")
	extractCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	extractCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "per-page fetch timeout")
	extractCmd.Flags().StringVar(&userAgent, "ua", "Claimpipe/0.1 (+https://github.com/tervyx/claimpipe)", "HTTP User-Agent")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetches)")
	extractCmd.Flags().StringVar(&cacheDir, "cache-dir", ".claimpipe-cache", "page cache directory")
	extractCmd.Flags().Float64Var(&ratePerHost, "rate", 0.5, "requests per second per domain")
	_ = extractCmd.MarkFlagRequired("intake")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = fetchTimeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.RatePerHost = ratePerHost
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Concurrency.Workers = concurrency
	cfg.Extraction.Provider = extractProvider
	cfg.Extraction.Model = extractModel
	cfg.Extraction.Version = extractVersion

	if extractProvider == "openai" {
		cfg.Extraction.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Extraction.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			cfg.Extraction.BaseURL = baseURL
		}
	}

	intakeTable, err := intake.Read(extractIntake)
	if err != nil {
		return fmt.Errorf("load intake: %w", err)
	}

	provider, err := extract.NewProvider(cfg.Extraction)
	if err != nil {
		return err
	}
	extractor := extract.NewExtractor(provider, cfg.Extraction.Version)

	var pages cache.Cache
	if cfg.Cache.Enabled {
		pages = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	fetcher := pipeline.NewFetcher(cfg.HTTP, pages)

	rows := make([]model.IntakeRow, 0, len(intakeTable.Order))
	for _, id := range intakeTable.Order {
		rows = append(rows, intakeTable.Rows[id])
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting %d products with %s (%d workers)\n",
			len(rows), provider.Name(), cfg.Concurrency.Workers)
	}

	runner := worker.NewBatchRunner(fetcher, extractor, cfg.Concurrency.Workers)
	results := runner.Run(rows)

	var records []model.RawExtractionRecord
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", res.ProductID, res.Err)
			continue
		}
		records = append(records, res.Record)
		if verbose {
			fmt.Fprintf(os.Stderr, "  %s: %d claims\n", res.ProductID, len(res.Record.Claims))
		}
	}

	if err := pipeline.WriteRecords(extractOut, records); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Extracted %d/%d products → %s\n", len(records), len(rows), extractOut)
	if failed > 0 {
		return fmt.Errorf("%d products failed extraction", failed)
	}
	return nil
}
