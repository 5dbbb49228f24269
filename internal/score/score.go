// Package score combines coverage, complexity, and dependency evidence
// into one explainable number per debt item.
//
// A score is computed in two steps. The base score weights three
// factors, each on a 0 to 10 scale, and multiplies the result by the
// function's role weight. The final score then runs the base through
// the scaling package, which amplifies by debt type and applies risk
// boosts, and clamps it to the ceiling.
package score

import (
	"math"

	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/scaling"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// MaxFactor is the upper bound of each factor.
const MaxFactor = 10.0

// MaxBase is the largest possible base score: every factor at its
// maximum with the heaviest default role weight.
const MaxBase = 15.0

// DefaultCeiling is the upper bound of a final score.
const DefaultCeiling = scaling.DefaultCeiling

// Weights are the relative importance of the three factors.
type Weights struct {
	Coverage   float64 `yaml:"coverage" toml:"coverage" json:"coverage"`
	Complexity float64 `yaml:"complexity" toml:"complexity" json:"complexity"`
	Dependency float64 `yaml:"dependency" toml:"dependency" json:"dependency"`
}

// DefaultWeights favours coverage gaps over raw complexity.
func DefaultWeights() Weights {
	return Weights{Coverage: 0.5, Complexity: 0.35, Dependency: 0.15}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 { return w.Coverage + w.Complexity + w.Dependency }

// Config configures Compute.
type Config struct {
	Weights     Weights
	Multipliers role.Multipliers
	Scaling     scaling.Config
}

// DefaultConfig returns the standard scoring configuration.
func DefaultConfig() Config {
	return Config{
		Weights:     DefaultWeights(),
		Multipliers: role.DefaultMultipliers(),
		Scaling:     scaling.DefaultConfig(),
	}
}

// Input is everything the scorer knows about one function.
type Input struct {
	Metrics    snapshot.FunctionMetrics
	Debt       debt.DebtType
	Role       role.FunctionRole
	Upstream   int
	Downstream int

	// Coverage is nil when the run has no coverage data at all.
	Coverage *coverage.TransitiveCoverage
}

// UnifiedScore is the full breakdown of an item's score.
type UnifiedScore struct {
	ComplexityFactor  float64 `json:"complexity_factor"`
	CoverageFactor    float64 `json:"coverage_factor"`
	DependencyFactor  float64 `json:"dependency_factor"`
	RoleMultiplier    float64 `json:"role_multiplier"`
	BaseScore         float64 `json:"base_score"`
	ExponentialFactor float64 `json:"exponential_factor"`
	RiskBoost         float64 `json:"risk_boost"`
	FinalScore        float64 `json:"final_score"`
}

// IsZero reports whether the score was suppressed entirely.
func (s UnifiedScore) IsZero() bool { return s == UnifiedScore{} }

// Compute scores one function. Trivial functions that are already well
// tested score zero and are not scaled.
func Compute(in Input, cfg Config) UnifiedScore {
	m := in.Metrics
	if isTrivial(m, in.Role) && isTested(in.Coverage) {
		return UnifiedScore{}
	}

	s := UnifiedScore{
		ComplexityFactor: ComplexityFactor(m.Cyclomatic, m.Cognitive),
		CoverageFactor:   CoverageFactor(in.Coverage, m.Cyclomatic, m.IsTest),
		DependencyFactor: DependencyFactor(in.Upstream),
		RoleMultiplier:   cfg.Multipliers.For(in.Role),
	}
	s.BaseScore = Base(s.CoverageFactor, s.ComplexityFactor, s.DependencyFactor, s.RoleMultiplier, cfg.Weights)

	var eff *float64
	if in.Coverage != nil {
		v := in.Coverage.Effective()
		eff = &v
	}
	s.FinalScore, s.ExponentialFactor, s.RiskBoost = scaling.Apply(s.BaseScore, scaling.Context{
		Debt:       in.Debt,
		Role:       in.Role,
		Cyclomatic: m.Cyclomatic,
		Upstream:   in.Upstream,
		Downstream: in.Downstream,
		Coverage:   eff,
	}, cfg.Scaling)
	return s
}

// Base combines the factors. With weights summing to 1 the result lies
// in [0, MaxFactor*roleMultiplier].
func Base(cov, cx, dep, roleMultiplier float64, w Weights) float64 {
	b := (w.Coverage*cov + w.Complexity*cx + w.Dependency*dep) * roleMultiplier
	if b < 0 || math.IsNaN(b) {
		return 0
	}
	return b
}

// ComplexityFactor maps the mean of cyclomatic and cognitive complexity
// onto 0..10 in three bands: 0-3 for simple code, 3-6 for moderate code
// and 6-10 for complex code.
func ComplexityFactor(cyclomatic, cognitive int) float64 {
	c := float64(cyclomatic+cognitive) / 2
	switch {
	case c <= 0:
		return 0
	case c <= 5:
		return c * 0.6
	case c <= 10:
		return 3 + (c-5)*0.6
	default:
		return 6 + math.Min((c-10)*0.2, 4)
	}
}

// CoverageFactor is the testing urgency of a function. It is maximal
// when no coverage data exists or nothing covers the function, and
// zero for tests themselves.
func CoverageFactor(tc *coverage.TransitiveCoverage, cyclomatic int, isTest bool) float64 {
	if isTest {
		return 0
	}
	if tc == nil || tc.Effective() == 0 {
		return MaxFactor
	}
	return coverage.Urgency(*tc, float64(cyclomatic))
}

// DependencyFactor maps the number of upstream callers onto 0..10.
func DependencyFactor(upstream int) float64 {
	switch {
	case upstream <= 0:
		return 0
	case upstream <= 5:
		return float64(upstream + 1)
	case upstream <= 7:
		return 7
	case upstream <= 9:
		return 8
	case upstream <= 14:
		return 9
	default:
		return 10
	}
}

func isTrivial(m snapshot.FunctionMetrics, r role.FunctionRole) bool {
	if m.Cyclomatic > 3 || m.Cognitive > 5 {
		return false
	}
	switch r {
	case role.IOWrapper, role.EntryPoint:
		return true
	case role.PureLogic:
		return m.Length <= 10
	}
	return false
}

func isTested(tc *coverage.TransitiveCoverage) bool {
	return tc != nil && tc.Effective() >= coverage.WellCoveredThreshold
}
