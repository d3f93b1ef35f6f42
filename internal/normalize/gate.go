package normalize

import (
	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/model"
)

// gateRule is one predicate→label pair in the gate resolution table
type gateRule struct {
	label   model.GateHint
	applies func(hints.Result) bool
}

// gateTable builds the ordered resolution table for the given
// thresholds. Rules are evaluated top-down and the first match wins:
// Φ outranks K, K outranks any L score.
func gateTable(hardThreshold, softThreshold int) []gateRule {
	return []gateRule{
		{model.GatePhiCandidate, func(r hints.Result) bool { return len(r.PhiIDs) > 0 }},
		{model.GateKCandidate, func(r hints.Result) bool { return len(r.KIDs) > 0 }},
		{model.GateLHard, func(r hints.Result) bool { return r.LScore >= hardThreshold }},
		{model.GateLSoft, func(r hints.Result) bool { return r.LScore >= softThreshold }},
	}
}

// resolveGate returns the single gate hint for one claim's matches
func resolveGate(table []gateRule, res hints.Result) model.GateHint {
	for _, rule := range table {
		if rule.applies(res) {
			return rule.label
		}
	}
	return model.GateNone
}
