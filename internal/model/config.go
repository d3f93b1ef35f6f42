package model

import "time"

// Config holds the complete claimpipe configuration.
// Loaded once at startup and passed explicitly to each stage.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Normalize   NormalizeConfig   `yaml:"normalize"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RatePerHost  float64       `yaml:"rate_per_host"` // requests per second per domain
	RateBurst    int           `yaml:"rate_burst"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls worker counts for the fetch/extract stages
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// ExtractionConfig controls the LLM extraction call.
// Temperature is pinned to zero by the extraction stage itself and is
// deliberately not configurable.
type ExtractionConfig struct {
	Provider  string `yaml:"provider"` // openai or rules
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // From environment only, never persisted
	BaseURL   string `yaml:"base_url"`
	Version   string `yaml:"version"` // Prompt/rule version stamped into records
	MaxTokens int    `yaml:"max_tokens"`
}

// NormalizeConfig holds the normalizer thresholds
type NormalizeConfig struct {
	LHardThreshold    int     `yaml:"l_hard_threshold"`    // gate_hint=l_hard at or above
	LSoftThreshold    int     `yaml:"l_soft_threshold"`    // gate_hint=l_soft at or above
	MinOCRConfidence  float64 `yaml:"min_ocr_confidence"`  // below this, image claims need review
	MinClaimTextChars int     `yaml:"min_claim_text_chars"` // below this, claims need review
	HintsPath         string  `yaml:"hints_path"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Claimpipe/0.1 (+https://github.com/tervyx/claimpipe)",
			MaxBodyBytes: 2_000_000,
			RatePerHost:  0.5,
			RateBurst:    2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".claimpipe-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Extraction: ExtractionConfig{
			Provider:  "rules",
			Model:     "gpt-4o-mini",
			Version:   "v1",
			MaxTokens: 2048,
		},
		Normalize: NormalizeConfig{
			LHardThreshold:    3,
			LSoftThreshold:    1,
			MinOCRConfidence:  0.7,
			MinClaimTextChars: 10,
			HintsPath:         "configs/policy_hints.yaml",
		},
		Output: OutputConfig{},
	}
}
