package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tervyx/claimpipe/internal/intake"
	"github.com/tervyx/claimpipe/internal/model"
	"github.com/tervyx/claimpipe/internal/table"
)

var (
	weightsProducts string
	weightsPlan     string
)

// weightsCmd represents the weights command
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Compute representative-cohort sampling weights",
	Long: `Weights recomputes the sampling weight of every representative
product from the sampling plan: population share over observed sample
share, per stratum. Targeted products are never weighted.

Example:
  claimpipe weights --products product_info.csv --plan configs/sampling_plan.yaml`,
	RunE: runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)

	weightsCmd.Flags().StringVar(&weightsProducts, "products", "product_info.csv", "product table path (updated in place)")
	weightsCmd.Flags().StringVar(&weightsPlan, "plan", "configs/sampling_plan.yaml", "sampling plan YAML")
}

func runWeights(cmd *cobra.Command, args []string) error {
	plan, err := intake.LoadPlan(weightsPlan)
	if err != nil {
		return err
	}

	products, err := table.ReadProducts(weightsProducts)
	if err != nil {
		return fmt.Errorf("load product table: %w", err)
	}

	weights := intake.ComputeWeights(products, plan)
	updated := intake.ApplyWeights(products, weights)

	if err := table.WriteProducts(weightsProducts, updated); err != nil {
		return fmt.Errorf("write product table: %w", err)
	}

	rCount := 0
	for _, p := range updated {
		if p.Cohort == model.CohortRepresentative {
			rCount++
		}
	}
	fmt.Fprintf(os.Stderr, "✓ Weighted %d representative products → %s\n", rCount, weightsProducts)
	if verbose {
		fmt.Fprintf(os.Stderr, "  Frame version: %s, strata: %d\n",
			plan.FrameVersion, len(plan.Representative.Strata))
	}
	return nil
}
