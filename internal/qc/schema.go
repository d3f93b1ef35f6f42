// Package qc certifies the two output tables against declarative
// field schemas and the pipeline's semantic invariants. It is a pure
// read-only pass: it never mutates the tables and never stops at the
// first problem.
package qc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldType is the declared type of a table column
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeList   FieldType = "list" // JSON array cell
)

// Field declares one column: its type, whether it may be empty, and
// optional enum/range/format constraints
type Field struct {
	Name     string    `yaml:"name"`
	Type     FieldType `yaml:"type"`
	Required bool      `yaml:"required"`
	Enum     []string  `yaml:"enum,omitempty"`
	Min      *float64  `yaml:"min,omitempty"`
	Max      *float64  `yaml:"max,omitempty"`
	Format   string    `yaml:"format,omitempty"` // "sha256" for content hashes
}

// Schema declares one output table
type Schema struct {
	Table   string  `yaml:"table"`
	Version string  `yaml:"version"`
	Fields  []Field `yaml:"fields"`
}

// LoadSchema reads a table schema YAML file
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %s declares no fields", path)
	}
	return &s, nil
}

func fptr(f float64) *float64 { return &f }

// DefaultClaimSchema declares the claim table as the normalizer writes it
func DefaultClaimSchema() *Schema {
	return &Schema{
		Table:   "claims",
		Version: "v1",
		Fields: []Field{
			{Name: "product_id", Type: TypeString, Required: true},
			{Name: "claim_id", Type: TypeString, Required: true},
			{Name: "claim_text_verbatim", Type: TypeString, Required: true},
			{Name: "claim_type", Type: TypeString, Required: true,
				Enum: []string{"efficacy", "safety", "mechanism", "medical"}},
			{Name: "implied_outcome", Type: TypeString},
			{Name: "quantifier", Type: TypeString},
			{Name: "source", Type: TypeString, Required: true, Enum: []string{"text", "image"}},
			{Name: "extraction_model", Type: TypeString, Required: true},
			{Name: "extraction_temperature", Type: TypeFloat, Required: true},
			{Name: "claim_sha256", Type: TypeString, Required: true, Format: "sha256"},
			{Name: "page_sha256", Type: TypeString, Required: true, Format: "sha256"},
			{Name: "phi_hint_ids", Type: TypeList, Required: true},
			{Name: "k_hint_ids", Type: TypeList, Required: true},
			{Name: "l_tokens", Type: TypeList, Required: true},
			{Name: "l_token_score", Type: TypeInt, Required: true, Min: fptr(0)},
			{Name: "gate_hint", Type: TypeString, Required: true,
				Enum: []string{"phi_candidate", "k_candidate", "l_hard", "l_soft", "none"}},
			{Name: "review_needed", Type: TypeBool, Required: true},
		},
	}
}

// DefaultProductSchema declares the product table as the aggregator writes it
func DefaultProductSchema() *Schema {
	return &Schema{
		Table:   "products",
		Version: "v1",
		Fields: []Field{
			{Name: "product_id", Type: TypeString, Required: true},
			{Name: "platform", Type: TypeString, Required: true},
			{Name: "category_path", Type: TypeString},
			{Name: "intervention_type", Type: TypeString, Required: true},
			{Name: "product_title", Type: TypeString},
			{Name: "product_url", Type: TypeString, Required: true},
			{Name: "archive_url", Type: TypeString},
			{Name: "captured_at", Type: TypeString},
			{Name: "sampling_cohort", Type: TypeString, Required: true, Enum: []string{"R", "T"}},
			{Name: "selection_method", Type: TypeString},
			{Name: "sampling_weight", Type: TypeFloat, Min: fptr(0)},
			{Name: "sampling_frame_version", Type: TypeString, Required: true},
			{Name: "page_sha256", Type: TypeString, Required: true, Format: "sha256"},
			{Name: "ingredients_norm", Type: TypeList, Required: true},
			{Name: "risk_hits", Type: TypeList, Required: true},
			{Name: "phi_any_candidate", Type: TypeBool, Required: true},
			{Name: "k_any_candidate", Type: TypeBool, Required: true},
			{Name: "l_max_token_score", Type: TypeInt, Required: true, Min: fptr(0)},
		},
	}
}
