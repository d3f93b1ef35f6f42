package hints

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk shape of a policy hints YAML
type rulesFile struct {
	Version string                `yaml:"version"`
	Phi     map[string]hintConfig `yaml:"phi"`
	K       map[string]hintConfig `yaml:"k"`
	L       struct {
		Weights map[string]int `yaml:"weights"`
	} `yaml:"l"`
}

type hintConfig struct {
	Patterns []string `yaml:"patterns"`
	Note     string   `yaml:"note,omitempty"`
}

// hintRule is one compiled Φ or K rule
type hintRule struct {
	id       string
	patterns []*regexp.Regexp
}

// tokenRule is one weighted L token, matched as a case-insensitive substring
type tokenRule struct {
	token  string
	lower  string
	weight int
}

// RuleSet is a compiled, versioned policy hint rule set. Immutable
// after loading and safe for concurrent use.
type RuleSet struct {
	version string
	phi     []hintRule
	k       []hintRule
	l       []tokenRule
}

// Version returns the rule set version string
func (rs *RuleSet) Version() string {
	return rs.version
}

// LoadRules reads and compiles a policy hints YAML file
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules compiles a policy hints YAML document
func ParseRules(data []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse hints yaml: %w", err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("hints file missing version")
	}

	phi, err := compileHints(file.Phi)
	if err != nil {
		return nil, fmt.Errorf("phi rules: %w", err)
	}
	k, err := compileHints(file.K)
	if err != nil {
		return nil, fmt.Errorf("k rules: %w", err)
	}

	// Sort tokens so match output order is stable across runs and platforms
	l := make([]tokenRule, 0, len(file.L.Weights))
	for token, weight := range file.L.Weights {
		l = append(l, tokenRule{token: token, lower: strings.ToLower(token), weight: weight})
	}
	sort.Slice(l, func(i, j int) bool { return l[i].token < l[j].token })

	return &RuleSet{
		version: file.Version,
		phi:     phi,
		k:       k,
		l:       l,
	}, nil
}

// compileHints compiles pattern lists into case-insensitive regexps,
// sorted by hint id for deterministic match order
func compileHints(raw map[string]hintConfig) ([]hintRule, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]hintRule, 0, len(ids))
	for _, id := range ids {
		conf := raw[id]
		if len(conf.Patterns) == 0 {
			return nil, fmt.Errorf("hint %q has no patterns", id)
		}
		compiled := make([]*regexp.Regexp, 0, len(conf.Patterns))
		for _, pattern := range conf.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("hint %q pattern %q: %w", id, pattern, err)
			}
			compiled = append(compiled, re)
		}
		rules = append(rules, hintRule{id: id, patterns: compiled})
	}
	return rules, nil
}
