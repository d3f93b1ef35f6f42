package normalize

import (
	"testing"

	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/model"
)

func TestResolveGate_Precedence(t *testing.T) {
	table := gateTable(3, 1)

	cases := []struct {
		name string
		res  hints.Result
		want model.GateHint
	}{
		{"phi beats everything", hints.Result{PhiIDs: []string{"phi_quantum"}, KIDs: []string{"k_x"}, LScore: 10}, model.GatePhiCandidate},
		{"k beats l", hints.Result{KIDs: []string{"k_x"}, LScore: 10}, model.GateKCandidate},
		{"hard at threshold", hints.Result{LScore: 3}, model.GateLHard},
		{"hard above threshold", hints.Result{LScore: 7}, model.GateLHard},
		{"soft below hard", hints.Result{LScore: 2}, model.GateLSoft},
		{"soft at threshold", hints.Result{LScore: 1}, model.GateLSoft},
		{"none", hints.Result{}, model.GateNone},
	}

	for _, tc := range cases {
		if got := resolveGate(table, tc.res); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
