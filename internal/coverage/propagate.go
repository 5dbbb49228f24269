package coverage

import (
	"math"

	"github.com/unbound-force/debtmap/internal/callgraph"
)

// WellCoveredThreshold is the direct coverage a callee needs before it
// counts toward its caller's transitive coverage.
const WellCoveredThreshold = 0.8

// MaxUrgency is the upper bound of Urgency.
const MaxUrgency = 10.0

// TransitiveCoverage is direct coverage plus a one-hop estimate from
// well-covered callees.
type TransitiveCoverage struct {
	Direct         float64                `json:"direct"`
	Transitive     float64                `json:"transitive"`
	PropagatedFrom []callgraph.FunctionID `json:"propagated_from"`
}

// Effective is the better of direct and transitive coverage.
func (tc TransitiveCoverage) Effective() float64 {
	return math.Max(tc.Direct, tc.Transitive)
}

// Propagate computes transitive coverage for id: the better of its
// direct coverage and the share of callees whose direct coverage
// exceeds WellCoveredThreshold. PropagatedFrom is empty unless the
// callee share wins, so more direct coverage never lowers the estimate.
func Propagate(id callgraph.FunctionID, g *callgraph.Graph, idx *Index) TransitiveCoverage {
	direct := idx.Direct(id.File, id.Name, id.Line)
	tc := TransitiveCoverage{Direct: direct, Transitive: direct, PropagatedFrom: []callgraph.FunctionID{}}

	callees := g.CalleesOf(id)
	if len(callees) == 0 {
		return tc
	}

	well := []callgraph.FunctionID{}
	for _, c := range callees {
		if idx.Direct(c.File, c.Name, c.Line) > WellCoveredThreshold {
			well = append(well, c)
		}
	}
	if share := float64(len(well)) / float64(len(callees)); share > direct {
		tc.Transitive = share
		tc.PropagatedFrom = well
	}
	return tc
}

// PropagateAll computes transitive coverage for every function in g.
func PropagateAll(g *callgraph.Graph, idx *Index) map[callgraph.FunctionID]TransitiveCoverage {
	out := make(map[callgraph.FunctionID]TransitiveCoverage, g.Len())
	for _, id := range g.Functions() {
		out[id] = Propagate(id, g, idx)
	}
	return out
}

// Urgency rates how badly a function needs tests on a 0 to 10 scale.
// It grows with the coverage gap and with complexity, whose weight is
// capped at 2.
func Urgency(tc TransitiveCoverage, complexity float64) float64 {
	gap := 1 - clampRatio(tc.Effective())
	if complexity < 0 || complexity != complexity {
		complexity = 0
	}
	weight := math.Min(complexity/10, 2)
	u := gap * weight * 5
	return math.Max(0, math.Min(u, MaxUrgency))
}
