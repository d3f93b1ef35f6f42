package extract

import (
	"fmt"

	"github.com/tervyx/claimpipe/internal/model"
)

// NewProvider creates the configured extraction provider
func NewProvider(cfg model.ExtractionConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case "rules", "":
		return NewRulesProvider(), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
}
