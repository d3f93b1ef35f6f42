package hints

import "strings"

// Matcher annotates claim and ingredient text with policy hint ids.
// It is a pure annotation function: no judgment, no side effects, and
// identical output for identical text and rule version.
type Matcher struct {
	rules *RuleSet
}

// NewMatcher creates a matcher over a compiled rule set
func NewMatcher(rules *RuleSet) *Matcher {
	return &Matcher{rules: rules}
}

// Result holds all hint matches for one piece of text
type Result struct {
	PhiIDs  []string // Physically implausible mechanism hints
	KIDs    []string // Safety/regulatory risk hints
	LTokens []string // Matched exaggeration tokens, rule order
	LScore  int      // Sum of matched token weights
}

// Match reports every rule that matches the text. A hint id is
// reported once even when several of its patterns match; distinct
// tokens all count toward the L score even when their substrings
// overlap. Empty text yields all-empty results.
func (m *Matcher) Match(text string) Result {
	var res Result
	if text == "" {
		return res
	}

	res.PhiIDs = matchHints(m.rules.phi, text)
	res.KIDs = matchHints(m.rules.k, text)

	lower := strings.ToLower(text)
	for _, rule := range m.rules.l {
		if strings.Contains(lower, rule.lower) {
			res.LTokens = append(res.LTokens, rule.token)
			res.LScore += rule.weight
		}
	}
	return res
}

// MatchIngredients reports K hint ids matching an ingredient list.
// Ingredients are joined and matched as one text so multi-word
// patterns can span list entries the way they do in label text.
func (m *Matcher) MatchIngredients(ingredients []string) []string {
	if len(ingredients) == 0 {
		return nil
	}
	return matchHints(m.rules.k, strings.Join(ingredients, " "))
}

// matchHints returns the ids of every rule with at least one matching
// pattern, in rule order. No short-circuit across rules: downstream
// aggregation depends on the full set.
func matchHints(rules []hintRule, text string) []string {
	var ids []string
	for _, rule := range rules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				ids = append(ids, rule.id)
				break
			}
		}
	}
	return ids
}
