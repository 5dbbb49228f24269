package debt

import (
	"fmt"
	"math"

	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// CRAPThreshold is the CRAP score above which a function is reported as
// a risk factor.
const CRAPThreshold = 30.0

// CRAP computes the Change Risk Anti-Patterns score for a function
// with the given cyclomatic complexity and coverage ratio in [0, 1]:
//
//	CRAP(m) = comp(m)^2 * (1 - cov(m))^3 + comp(m)
func CRAP(complexity int, coverage float64) float64 {
	comp := float64(complexity)
	uncov := 1.0 - math.Max(0, math.Min(1, coverage))
	return comp*comp*math.Pow(uncov, 3) + comp
}

// RiskScore is the fallback risk on a 0-10 scale, weighting cyclomatic
// and cognitive complexity equally and length lightly.
func RiskScore(m snapshot.FunctionMetrics) float64 {
	r := (float64(m.Cyclomatic)/30.0)*0.4 +
		(float64(m.Cognitive)/45.0)*0.4 +
		(float64(m.Length)/100.0)*0.2
	return math.Min(r*10, 10)
}

func riskOf(m snapshot.FunctionMetrics, tc *coverage.TransitiveCoverage) Risk {
	var factors []string
	if m.Cyclomatic > 5 {
		factors = append(factors, fmt.Sprintf("moderate cyclomatic complexity (%d)", m.Cyclomatic))
	}
	if m.Cognitive > 8 {
		factors = append(factors, fmt.Sprintf("moderate cognitive complexity (%d)", m.Cognitive))
	}
	if m.Length > 50 {
		factors = append(factors, fmt.Sprintf("long function (%d lines)", m.Length))
	}
	if m.Nesting > 3 {
		factors = append(factors, fmt.Sprintf("deep nesting (%d levels)", m.Nesting))
	}
	if tc != nil && !m.IsTest {
		if c := CRAP(m.Cyclomatic, tc.Effective()); c > CRAPThreshold {
			factors = append(factors, fmt.Sprintf("CRAP %.1f at %.0f%% coverage", c, tc.Effective()*100))
		}
	}
	return Risk{RiskScore: RiskScore(m), Factors: factors}
}
