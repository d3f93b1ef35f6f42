package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tervyx/claimpipe/internal/model"
)

// Provider defines one way of turning page sections into raw claims
type Provider interface {
	// Name returns the model name stamped into extraction metadata
	Name() string

	// Extract returns the raw claims found in the sections.
	// Implementations must be deterministic: same sections, same output.
	Extract(ctx context.Context, sections []Section) ([]model.RawClaim, error)
}

// Extractor runs a provider over product pages and assembles
// RawExtractionRecords with their metadata and page hashes
type Extractor struct {
	provider Provider
	version  string
}

// NewExtractor creates an extractor stamping the given prompt/rule version
func NewExtractor(provider Provider, version string) *Extractor {
	return &Extractor{provider: provider, version: version}
}

// ExtractRecord produces the raw extraction record for one product page
func (e *Extractor) ExtractRecord(ctx context.Context, productID, pageHTML string) (model.RawExtractionRecord, error) {
	sections, err := Sections(pageHTML)
	if err != nil {
		return model.RawExtractionRecord{}, fmt.Errorf("parse page for %s: %w", productID, err)
	}

	claims, err := e.provider.Extract(ctx, sections)
	if err != nil {
		return model.RawExtractionRecord{}, fmt.Errorf("extract %s: %w", productID, err)
	}

	pageSum := sha256.Sum256([]byte(pageHTML))
	return model.RawExtractionRecord{
		ProductID:  productID,
		PageSHA256: hex.EncodeToString(pageSum[:]),
		Claims:     claims,
		Extraction: model.ExtractionMeta{
			Model:       e.provider.Name(),
			Version:     e.version,
			Temperature: 0,
			ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
