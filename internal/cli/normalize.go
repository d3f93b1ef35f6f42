package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/aggregate"
	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/normalize"
	"github.com/tervyx/claimpipe/internal/pipeline"
	"github.com/tervyx/claimpipe/internal/table"
)

var (
	rawPath      string
	intakePath   string
	hintsPath    string
	productsOut  string
	claimsOut    string
	summaryOut   string
	lHard        int
	lSoft        int
	minOCR       float64
	minTextChars int
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw extraction records into the claim and product tables",
	Long: `Normalize reads the raw extraction JSONL and the intake table, tags
every claim with policy hint identifiers, resolves each claim's gate
hint, folds per-product aggregates, and writes both output tables.

Records with a non-zero extraction temperature are rejected whole:
deterministic extraction is a precondition for reproducibility.
Rejections don't stop the run, but they do fail it.

Example:
  claimpipe normalize --raw claims_raw.jsonl --intake product_urls.csv \
    --products-out product_info.csv --claims-out claims.csv`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&rawPath, "raw", "", "raw extraction JSONL (required)")
	normalizeCmd.Flags().StringVar(&intakePath, "intake", "", "product/URL intake CSV (required)")
	normalizeCmd.Flags().StringVar(&hintsPath, "hints", "configs/policy_hints.yaml", "policy hints YAML")
	normalizeCmd.Flags().StringVar(&productsOut, "products-out", "product_info.csv", "product table output path")
	normalizeCmd.Flags().StringVar(&claimsOut, "claims-out", "claims.csv", "claim table output path")
	normalizeCmd.Flags().StringVar(&summaryOut, "summary", "", "run summary JSON output path (optional)")
	normalizeCmd.Flags().IntVar(&lHard, "l-hard", 3, "L score threshold for gate_hint=l_hard")
	normalizeCmd.Flags().IntVar(&lSoft, "l-soft", 1, "L score threshold for gate_hint=l_soft")
	normalizeCmd.Flags().Float64Var(&minOCR, "min-ocr-confidence", 0.7, "image claims below this confidence need review")
	normalizeCmd.Flags().IntVar(&minTextChars, "min-text-chars", 10, "claims shorter than this need review")
	_ = normalizeCmd.MarkFlagRequired("raw")
	_ = normalizeCmd.MarkFlagRequired("intake")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.Normalize.LHardThreshold = lHard
	cfg.Normalize.LSoftThreshold = lSoft
	cfg.Normalize.MinOCRConfidence = minOCR
	cfg.Normalize.MinClaimTextChars = minTextChars
	cfg.Normalize.HintsPath = hintsPath

	rules, err := hints.LoadRules(cfg.Normalize.HintsPath)
	if err != nil {
		return fmt.Errorf("load policy hints: %w", err)
	}
	matcher := hints.NewMatcher(rules)

	intakeTable, err := intake.Read(intakePath)
	if err != nil {
		return fmt.Errorf("load intake: %w", err)
	}

	records, lineRejects, err := pipeline.ReadRecords(rawPath)
	if err != nil {
		return fmt.Errorf("load raw records: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Normalizing %s (%d records, hints %s)\n", rawPath, len(records), rules.Version())
	}

	p := pipeline.NewPipeline(
		normalize.NewNormalizer(matcher, cfg.Normalize),
		aggregate.NewAggregator(matcher),
		os.Stderr,
		verbose,
	)
	result := p.Run(records, intakeTable)
	p.RejectLines(result, lineRejects)

	if err := table.WriteProducts(productsOut, result.Products); err != nil {
		return fmt.Errorf("write product table: %w", err)
	}
	if err := table.WriteClaims(claimsOut, result.Claims); err != nil {
		return fmt.Errorf("write claim table: %w", err)
	}
	if summaryOut != "" {
		data, err := json.MarshalIndent(result.Summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		if err := os.WriteFile(summaryOut, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Products: %d → %s\n", result.Summary.Products, productsOut)
	fmt.Fprintf(os.Stderr, "✓ Claims:   %d → %s\n", result.Summary.Claims, claimsOut)
	if result.Summary.DroppedClaims > 0 {
		fmt.Fprintf(os.Stderr, "  Dropped empty-text claims: %d\n", result.Summary.DroppedClaims)
	}
	if result.Summary.ReviewClaims > 0 {
		fmt.Fprintf(os.Stderr, "  Claims flagged for review: %d\n", result.Summary.ReviewClaims)
	}

	if !result.Summary.OK {
		return fmt.Errorf("run completed with %d rejected records", result.Summary.RejectedRecords)
	}
	return nil
}
