// Package scaling amplifies base scores by debt type and applies
// discrete risk boosts, so that a handful of severe items separate
// clearly from the long tail.
package scaling

import (
	"fmt"
	"math"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
)

// DefaultCeiling is the upper bound of every final score.
const DefaultCeiling = 100.0

// Config holds the exponents, boost factors, and their thresholds.
type Config struct {
	GodObjectExponent     float64 `yaml:"god_object_exponent" toml:"god_object_exponent" json:"god_object_exponent"`
	GodModuleExponent     float64 `yaml:"god_module_exponent" toml:"god_module_exponent" json:"god_module_exponent"`
	HotspotSevereExponent float64 `yaml:"hotspot_severe_exponent" toml:"hotspot_severe_exponent" json:"hotspot_severe_exponent"`
	HotspotHighExponent   float64 `yaml:"hotspot_high_exponent" toml:"hotspot_high_exponent" json:"hotspot_high_exponent"`
	TestingGapExponent    float64 `yaml:"testing_gap_exponent" toml:"testing_gap_exponent" json:"testing_gap_exponent"`

	HotspotSevereCyclomatic int `yaml:"hotspot_severe_cyclomatic" toml:"hotspot_severe_cyclomatic" json:"hotspot_severe_cyclomatic"`
	HotspotHighCyclomatic   int `yaml:"hotspot_high_cyclomatic" toml:"hotspot_high_cyclomatic" json:"hotspot_high_cyclomatic"`
	TestingGapCyclomatic    int `yaml:"testing_gap_cyclomatic" toml:"testing_gap_cyclomatic" json:"testing_gap_cyclomatic"`

	HighDependencyCount  int     `yaml:"high_dependency_count" toml:"high_dependency_count" json:"high_dependency_count"`
	HighDependencyBoost  float64 `yaml:"high_dependency_boost" toml:"high_dependency_boost" json:"high_dependency_boost"`
	EntryPointBoost      float64 `yaml:"entry_point_boost" toml:"entry_point_boost" json:"entry_point_boost"`
	UntestedCyclomatic   int     `yaml:"untested_cyclomatic" toml:"untested_cyclomatic" json:"untested_cyclomatic"`
	UntestedCoverage     float64 `yaml:"untested_coverage" toml:"untested_coverage" json:"untested_coverage"`
	ComplexUntestedBoost float64 `yaml:"complex_untested_boost" toml:"complex_untested_boost" json:"complex_untested_boost"`
	Ceiling              float64 `yaml:"ceiling" toml:"ceiling" json:"ceiling"`
}

// DefaultConfig returns the standard scaling configuration.
func DefaultConfig() Config {
	return Config{
		GodObjectExponent:     1.4,
		GodModuleExponent:     1.4,
		HotspotSevereExponent: 1.2,
		HotspotHighExponent:   1.1,
		TestingGapExponent:    1.1,

		HotspotSevereCyclomatic: 30,
		HotspotHighCyclomatic:   15,
		TestingGapCyclomatic:    20,

		HighDependencyCount:  15,
		HighDependencyBoost:  1.2,
		EntryPointBoost:      1.15,
		UntestedCyclomatic:   20,
		UntestedCoverage:     0.1,
		ComplexUntestedBoost: 1.25,
		Ceiling:              DefaultCeiling,
	}
}

// Context is what scaling needs to know about an item besides its base.
type Context struct {
	Debt       debt.DebtType
	Role       role.FunctionRole
	Cyclomatic int
	Upstream   int
	Downstream int

	// Coverage is the effective coverage ratio, nil when unknown.
	// Unknown coverage counts as untested.
	Coverage *float64
}

// Exponent returns the amplification exponent for d.
func Exponent(d debt.DebtType, cfg Config) float64 {
	switch v := d.(type) {
	case debt.GodObject:
		return cfg.GodObjectExponent
	case debt.GodModule:
		return cfg.GodModuleExponent
	case debt.ComplexityHotspot:
		switch {
		case v.Cyclomatic > cfg.HotspotSevereCyclomatic:
			return cfg.HotspotSevereExponent
		case v.Cyclomatic > cfg.HotspotHighCyclomatic:
			return cfg.HotspotHighExponent
		}
		return 1.0
	case debt.TestingGap:
		if v.Cyclomatic > cfg.TestingGapCyclomatic {
			return cfg.TestingGapExponent
		}
		return 1.0
	case debt.DeadCode, debt.Duplication, debt.Risk, debt.ErrorSwallowing,
		debt.Todo, debt.Fixme, debt.CodeSmell, debt.Complexity, debt.Dependency,
		debt.ResourceManagement, debt.CodeOrganization, debt.TestComplexity,
		debt.TestQuality, debt.TestComplexityHotspot, debt.TestTodo,
		debt.TestDuplication, debt.AllocationInefficiency, debt.StringConcatenation,
		debt.NestedLoops, debt.BlockingIO, debt.SuboptimalDataStructure,
		debt.FeatureEnvy, debt.PrimitiveObsession, debt.MagicValues,
		debt.AssertionComplexity, debt.FlakyTestPattern, debt.AsyncMisuse,
		debt.ResourceLeak, debt.CollectionInefficiency, debt.ScatteredType,
		debt.OrphanedFunctions, debt.UtilitiesSprawl:
		return 1.0
	default:
		panic(fmt.Sprintf("scaling: unhandled debt type %T", d))
	}
}

// RiskBoost returns the product of all boosts that apply to ctx.
// It is always >= 1.
func RiskBoost(ctx Context, cfg Config) float64 {
	boost := 1.0
	if ctx.Upstream+ctx.Downstream > cfg.HighDependencyCount {
		boost *= cfg.HighDependencyBoost
	}
	if ctx.Role == role.EntryPoint {
		boost *= cfg.EntryPointBoost
	}
	cov := 0.0
	if ctx.Coverage != nil {
		cov = *ctx.Coverage
	}
	if ctx.Cyclomatic > cfg.UntestedCyclomatic && cov < cfg.UntestedCoverage {
		boost *= cfg.ComplexUntestedBoost
	}
	return math.Max(boost, 1.0)
}

// Apply scales base and returns the final score with the exponent and
// boost that produced it. The base is floored at 1 before the power so
// that small scores are never shrunk by it. A non-finite input or
// result is a programming error and panics.
func Apply(base float64, ctx Context, cfg Config) (final, exponent, boost float64) {
	mustFinite("base", base)

	exponent = Exponent(ctx.Debt, cfg)
	boost = RiskBoost(ctx, cfg)

	scaled := math.Pow(math.Max(base, 1), exponent) * boost
	mustFinite("final", scaled)

	ceiling := cfg.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return math.Min(scaled, ceiling), exponent, boost
}

func mustFinite(what string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("scaling: non-finite %s score %v", what, v))
	}
}
