package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/qc"
	"github.com/tervyx/claimpipe/internal/table"
)

var (
	reportClaims string
	reportOut    string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the policy-hint pattern frequency report",
	Long: `Report counts how often each Φ/K hint id and L token fired across
the claim table. Used to sanity-check the rule set against the corpus.

Example:
  claimpipe report --claims claims.csv --out pattern_report.csv`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportClaims, "claims", "claims.csv", "claim table path")
	reportCmd.Flags().StringVar(&reportOut, "out", "pattern_report.csv", "pattern report output path")
}

func runReport(cmd *cobra.Command, args []string) error {
	claims, err := table.ReadClaims(reportClaims)
	if err != nil {
		return fmt.Errorf("load claim table: %w", err)
	}

	if err := qc.WritePatternReport(reportOut, claims); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Pattern report (%d claims) → %s\n", len(claims), reportOut)
	return nil
}
