package intake

import (
	"fmt"
	"os"

	"github.com/tervyx/claimpipe/internal/model"
	"gopkg.in/yaml.v3"
)

// Stratum is one representative-cohort stratum with its share of the
// sampling frame population
type Stratum struct {
	Name            string  `yaml:"name"`
	Allocation      float64 `yaml:"allocation"`       // Share of the drawn sample
	PopulationShare float64 `yaml:"population_share"` // Share of the frame population
}

// TargetNode is one targeted-cohort discovery node
type TargetNode struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Gate     string   `yaml:"gate,omitempty"`
}

// Plan is the sampling plan: how the representative sample was drawn
// and which targeted nodes were probed
type Plan struct {
	FrameVersion   string `yaml:"frame_version"`
	Representative struct {
		TargetN int       `yaml:"target_n"`
		Strata  []Stratum `yaml:"strata"`
	} `yaml:"representative"`
	Targeted struct {
		Nodes []TargetNode `yaml:"nodes"`
	} `yaml:"targeted"`
}

// LoadPlan reads a sampling plan YAML file
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return &plan, nil
}

// ComputeWeights assigns a sampling weight to every representative
// product: population share over observed sample share per stratum
// (the product's category path). Targeted products get no entry.
func ComputeWeights(products []model.CanonicalProduct, plan *Plan) map[string]float64 {
	shares := make(map[string]float64, len(plan.Representative.Strata))
	for _, s := range plan.Representative.Strata {
		shares[s.Name] = s.PopulationShare
	}

	rTotal := 0
	counts := make(map[string]int)
	for _, p := range products {
		if p.Cohort == model.CohortRepresentative {
			rTotal++
			counts[p.CategoryPath]++
		}
	}

	weights := make(map[string]float64)
	if rTotal == 0 {
		return weights
	}

	for _, p := range products {
		if p.Cohort != model.CohortRepresentative {
			continue
		}
		weight := 1.0
		if share, ok := shares[p.CategoryPath]; ok && counts[p.CategoryPath] > 0 {
			sampleShare := float64(counts[p.CategoryPath]) / float64(rTotal)
			if sampleShare > 0 && share > 0 {
				weight = share / sampleShare
			}
		}
		weights[p.ProductID] = weight
	}
	return weights
}

// ApplyWeights returns a copy of the product list with representative
// weights replaced. Rows without a computed weight are untouched.
func ApplyWeights(products []model.CanonicalProduct, weights map[string]float64) []model.CanonicalProduct {
	out := make([]model.CanonicalProduct, len(products))
	for i, p := range products {
		if w, ok := weights[p.ProductID]; ok {
			weight := w
			p.SamplingWeight = &weight
		}
		out[i] = p
	}
	return out
}
