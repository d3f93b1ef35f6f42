package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tervyx/claimpipe/internal/model"
)

func writeIntake(t *testing.T, rows ...string) string {
	t.Helper()
	header := strings.Join(Columns, ",")
	path := filepath.Join(t.TempDir(), "intake.csv")
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_PreservesOrderAndFields(t *testing.T) {
	path := writeIntake(t,
		`B0IN000002,amazon,health/sleep_aids,supplement,Gummies,https://example.com/2,,2026-08-15,R,stratified,v-test,"melatonin, chamomile"`,
		`B0IN000001,amazon,health/weight_loss,supplement,Burner,https://example.com/1,,2026-08-15,T,keyword,v-test,`,
	)

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Order) != 2 || table.Order[0] != "B0IN000002" || table.Order[1] != "B0IN000001" {
		t.Errorf("file order not preserved: %v", table.Order)
	}

	row, ok := table.Get("B0IN000002")
	if !ok {
		t.Fatal("row missing")
	}
	if row.Cohort != model.CohortRepresentative {
		t.Errorf("cohort: %s", row.Cohort)
	}
	if row.IngredientsRaw != "melatonin, chamomile" {
		t.Errorf("ingredients: %q", row.IngredientsRaw)
	}
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name string
		rows []string
	}{
		{"empty product_id", []string{`,amazon,,supplement,X,https://x,,2026-08-15,R,,v-test,`}},
		{"bad cohort", []string{`B0IN000001,amazon,,supplement,X,https://x,,2026-08-15,Q,,v-test,`}},
		{"duplicate product_id", []string{
			`B0IN000001,amazon,,supplement,X,https://x,,2026-08-15,R,,v-test,`,
			`B0IN000001,amazon,,supplement,X,https://x,,2026-08-15,T,,v-test,`,
		}},
	}
	for _, tc := range cases {
		if _, err := Read(writeIntake(t, tc.rows...)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestRead_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.csv")
	if err := os.WriteFile(path, []byte("product_id,platform\nB0X,amazon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for missing cohort column")
	}
}

func product(id, category string, cohort model.Cohort) model.CanonicalProduct {
	return model.CanonicalProduct{ProductID: id, CategoryPath: category, Cohort: cohort}
}

func testPlan() *Plan {
	plan := &Plan{FrameVersion: "v-test"}
	plan.Representative.Strata = []Stratum{
		{Name: "sleep_aids", Allocation: 0.5, PopulationShare: 0.25},
		{Name: "weight_loss", Allocation: 0.5, PopulationShare: 0.75},
	}
	return plan
}

func TestComputeWeights(t *testing.T) {
	// 3 sleep (sample share 0.75) vs population 0.25 -> 1/3
	// 1 weight_loss (sample share 0.25) vs population 0.75 -> 3
	products := []model.CanonicalProduct{
		product("s1", "sleep_aids", model.CohortRepresentative),
		product("s2", "sleep_aids", model.CohortRepresentative),
		product("s3", "sleep_aids", model.CohortRepresentative),
		product("w1", "weight_loss", model.CohortRepresentative),
		product("t1", "detox_cleanses", model.CohortTargeted),
	}

	weights := ComputeWeights(products, testPlan())
	if len(weights) != 4 {
		t.Fatalf("expected 4 weighted products, got %d", len(weights))
	}
	if w := weights["s1"]; w < 0.333 || w > 0.334 {
		t.Errorf("sleep_aids weight: %v", w)
	}
	if w := weights["w1"]; w != 3 {
		t.Errorf("weight_loss weight: %v", w)
	}
	if _, ok := weights["t1"]; ok {
		t.Error("targeted product must not receive a weight")
	}
}

func TestComputeWeights_UnknownStratumDefaultsToOne(t *testing.T) {
	products := []model.CanonicalProduct{
		product("x1", "unmapped_category", model.CohortRepresentative),
	}
	weights := ComputeWeights(products, testPlan())
	if w := weights["x1"]; w != 1 {
		t.Errorf("expected default weight 1, got %v", w)
	}
}

func TestComputeWeights_NoRepresentativeRows(t *testing.T) {
	products := []model.CanonicalProduct{
		product("t1", "detox_cleanses", model.CohortTargeted),
	}
	if weights := ComputeWeights(products, testPlan()); len(weights) != 0 {
		t.Errorf("expected empty map, got %v", weights)
	}
}

func TestApplyWeights(t *testing.T) {
	base := 1.0
	products := []model.CanonicalProduct{
		{ProductID: "r1", Cohort: model.CohortRepresentative, SamplingWeight: &base},
		{ProductID: "t1", Cohort: model.CohortTargeted},
	}

	out := ApplyWeights(products, map[string]float64{"r1": 2.5})
	if out[0].SamplingWeight == nil || *out[0].SamplingWeight != 2.5 {
		t.Errorf("r1 weight: %v", out[0].SamplingWeight)
	}
	if out[1].SamplingWeight != nil {
		t.Errorf("t1 weight must stay nil")
	}
	// Input slice is not mutated
	if *products[0].SamplingWeight != 1.0 {
		t.Error("ApplyWeights mutated its input")
	}
}
