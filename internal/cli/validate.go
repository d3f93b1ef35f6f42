package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/qc"
	"github.com/tervyx/claimpipe/internal/table"
)

var (
	valProducts     string
	valClaims       string
	valIntake       string
	claimSchemaPath string
	prodSchemaPath  string
	qcReportOut     string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Certify the output tables against schemas and invariants",
	Long: `Validate re-reads both output tables and checks every declared
field, the exact-zero extraction temperature, referential integrity
between claims and products, intake coverage, content hash formats,
and recomputed cross-claim aggregates.

The validator always finishes and reports every violation it finds;
a single hard violation fails the run.

Example:
  claimpipe validate --products product_info.csv --claims claims.csv \
    --intake product_urls.csv --out qc_report.json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&valProducts, "products", "product_info.csv", "product table path")
	validateCmd.Flags().StringVar(&valClaims, "claims", "claims.csv", "claim table path")
	validateCmd.Flags().StringVar(&valIntake, "intake", "", "intake CSV for coverage checking (optional)")
	validateCmd.Flags().StringVar(&claimSchemaPath, "claim-schema", "", "claim schema YAML (default: built-in)")
	validateCmd.Flags().StringVar(&prodSchemaPath, "product-schema", "", "product schema YAML (default: built-in)")
	validateCmd.Flags().StringVar(&qcReportOut, "out", "qc_report.json", "QC report output path")
}

func runValidate(cmd *cobra.Command, args []string) error {
	claimSchema := qc.DefaultClaimSchema()
	if claimSchemaPath != "" {
		s, err := qc.LoadSchema(claimSchemaPath)
		if err != nil {
			return err
		}
		claimSchema = s
	}
	productSchema := qc.DefaultProductSchema()
	if prodSchemaPath != "" {
		s, err := qc.LoadSchema(prodSchemaPath)
		if err != nil {
			return err
		}
		productSchema = s
	}

	products, err := table.ReadRows(valProducts)
	if err != nil {
		return fmt.Errorf("load product table: %w", err)
	}
	claims, err := table.ReadRows(valClaims)
	if err != nil {
		return fmt.Errorf("load claim table: %w", err)
	}

	var intakeIDs []string
	if valIntake != "" {
		intakeTable, err := intake.Read(valIntake)
		if err != nil {
			return fmt.Errorf("load intake: %w", err)
		}
		intakeIDs = intakeTable.Order
	}

	validator := qc.NewValidator(claimSchema, productSchema)
	report := validator.Validate(products, claims, intakeIDs)

	if err := qc.WriteReportJSON(report, qcReportOut); err != nil {
		return err
	}
	qc.RenderSummary(os.Stderr, report)
	fmt.Fprintf(os.Stderr, "Report: %s\n", qcReportOut)

	if !report.Pass {
		return fmt.Errorf("validation failed with %d violations", len(report.Violations))
	}
	return nil
}
