package hints

import (
	"reflect"
	"testing"
)

const testRules = `
version: v-test
phi:
  phi_quantum:
    patterns: ["quantum"]
  phi_energy_field:
    patterns: ["energy field"]
k:
  k_disease_claim:
    patterns: ["cures? cancer"]
  k_banned_substance:
    patterns: ["ephedra", "dmaa"]
l:
  weights:
    miracle: 3
    "100%": 2
    instant: 2
    "clinically proven": 1
`

func mustRules(t *testing.T) *RuleSet {
	t.Helper()
	rules, err := ParseRules([]byte(testRules))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	return rules
}

func TestMatcher_Match_EmptyText(t *testing.T) {
	m := NewMatcher(mustRules(t))

	res := m.Match("")
	if len(res.PhiIDs) != 0 || len(res.KIDs) != 0 || len(res.LTokens) != 0 || res.LScore != 0 {
		t.Errorf("expected all-empty result for empty text, got %+v", res)
	}
}

func TestMatcher_Match_LTokens(t *testing.T) {
	m := NewMatcher(mustRules(t))

	res := m.Match("Clinically proven to improve sleep quality by 87%")
	if !reflect.DeepEqual(res.LTokens, []string{"clinically proven"}) {
		t.Errorf("expected [clinically proven], got %v", res.LTokens)
	}
	if res.LScore != 1 {
		t.Errorf("expected score 1, got %d", res.LScore)
	}
}

func TestMatcher_Match_LScoreSums(t *testing.T) {
	m := NewMatcher(mustRules(t))

	// miracle=3, 100%=2, instant=2
	res := m.Match("Miracle cure with 100% instant results")
	if res.LScore != 7 {
		t.Errorf("expected score 7, got %d", res.LScore)
	}
	if len(res.LTokens) != 3 {
		t.Errorf("expected 3 tokens, got %v", res.LTokens)
	}
}

func TestMatcher_Match_PhiCaseInsensitive(t *testing.T) {
	m := NewMatcher(mustRules(t))

	res := m.Match("QUANTUM Energy Field healing")
	want := []string{"phi_energy_field", "phi_quantum"}
	if !reflect.DeepEqual(res.PhiIDs, want) {
		t.Errorf("expected %v, got %v", want, res.PhiIDs)
	}
}

func TestMatcher_Match_AllRulesReported(t *testing.T) {
	m := NewMatcher(mustRules(t))

	// Both K rules must fire; no short-circuit on the first match
	res := m.Match("contains ephedra and cures cancer")
	want := []string{"k_banned_substance", "k_disease_claim"}
	if !reflect.DeepEqual(res.KIDs, want) {
		t.Errorf("expected %v, got %v", want, res.KIDs)
	}
}

func TestMatcher_Match_HintIDReportedOnce(t *testing.T) {
	m := NewMatcher(mustRules(t))

	// Two patterns of one rule both match; the id appears once
	res := m.Match("ephedra plus dmaa stack")
	if !reflect.DeepEqual(res.KIDs, []string{"k_banned_substance"}) {
		t.Errorf("expected single k_banned_substance, got %v", res.KIDs)
	}
}

func TestMatcher_Match_Deterministic(t *testing.T) {
	m := NewMatcher(mustRules(t))

	text := "Quantum energy field, miracle results, 100% guaranteed instant"
	first := m.Match(text)
	for i := 0; i < 10; i++ {
		if res := m.Match(text); !reflect.DeepEqual(res, first) {
			t.Fatalf("run %d differed: %+v vs %+v", i, res, first)
		}
	}
}

func TestMatcher_MatchIngredients(t *testing.T) {
	m := NewMatcher(mustRules(t))

	ids := m.MatchIngredients([]string{"vitamin c", "ephedra extract"})
	if !reflect.DeepEqual(ids, []string{"k_banned_substance"}) {
		t.Errorf("expected k_banned_substance, got %v", ids)
	}

	if ids := m.MatchIngredients(nil); ids != nil {
		t.Errorf("expected nil for empty ingredient list, got %v", ids)
	}
}

func TestParseRules_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing version", "phi:\n  p:\n    patterns: [\"x\"]\n"},
		{"empty patterns", "version: v1\nphi:\n  p:\n    patterns: []\n"},
		{"bad regex", "version: v1\nk:\n  k1:\n    patterns: [\"(unclosed\"]\n"},
	}
	for _, tc := range cases {
		if _, err := ParseRules([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
