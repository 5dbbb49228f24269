// Package tier assigns each debt item a recommendation tier that groups
// work by urgency, independent of its numeric score.
package tier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
)

// ErrUnknownProfile is returned for an unrecognised profile name.
var ErrUnknownProfile = errors.New("unknown tier profile")

// Tier is a recommendation tier. Lower values are more urgent.
type Tier int

// Tier constants, most urgent first.
const (
	T1CriticalArchitecture Tier = iota + 1
	T2ComplexUntested
	T3TestingGaps
	T4Maintenance
)

// All lists every tier in order of urgency.
var All = []Tier{T1CriticalArchitecture, T2ComplexUntested, T3TestingGaps, T4Maintenance}

// String returns the short tier name ("T1" to "T4").
func (t Tier) String() string {
	if t < T1CriticalArchitecture || t > T4Maintenance {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return fmt.Sprintf("T%d", int(t))
}

// Label returns the descriptive tier name.
func (t Tier) Label() string {
	switch t {
	case T1CriticalArchitecture:
		return "Critical Architecture"
	case T2ComplexUntested:
		return "Complex Untested"
	case T3TestingGaps:
		return "Testing Gaps"
	case T4Maintenance:
		return "Maintenance"
	}
	return t.String()
}

// MarshalText encodes the short name.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts "T1".."T4" case-insensitively.
func (t *Tier) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	for _, c := range All {
		if c.String() == s {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(b))
}

// Weight is the relative importance of a tier for grouping. It is
// never applied to scores.
func (t Tier) Weight() float64 {
	switch t {
	case T1CriticalArchitecture:
		return 1.5
	case T2ComplexUntested:
		return 1.0
	case T3TestingGaps:
		return 0.7
	default:
		return 0.3
	}
}

// Config holds the tier thresholds.
type Config struct {
	T1Complexity int `yaml:"t1_complexity" toml:"t1_complexity" json:"t1_complexity"`
	T2Complexity int `yaml:"t2_complexity" toml:"t2_complexity" json:"t2_complexity"`
	T2Dependency int `yaml:"t2_dependency" toml:"t2_dependency" json:"t2_dependency"`
	T3Complexity int `yaml:"t3_complexity" toml:"t3_complexity" json:"t3_complexity"`
}

// Balanced is the default profile.
func Balanced() Config {
	return Config{T1Complexity: 50, T2Complexity: 15, T2Dependency: 10, T3Complexity: 10}
}

// Strict promotes items to higher tiers sooner.
func Strict() Config {
	return Config{T1Complexity: 50, T2Complexity: 10, T2Dependency: 7, T3Complexity: 7}
}

// Lenient demands more evidence before promoting items.
func Lenient() Config {
	return Config{T1Complexity: 50, T2Complexity: 20, T2Dependency: 15, T3Complexity: 15}
}

// Profiles lists the profile names accepted by ProfileByName.
var Profiles = []string{"balanced", "strict", "lenient"}

// ProfileByName resolves a profile. The empty string selects Balanced.
func ProfileByName(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "balanced":
		return Balanced(), nil
	case "strict":
		return Strict(), nil
	case "lenient":
		return Lenient(), nil
	}
	return Config{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProfile, name, strings.Join(Profiles, ", "))
}

// Input is what the tier cascade inspects.
type Input struct {
	Debt       debt.DebtType
	Role       role.FunctionRole
	Cyclomatic int
	Upstream   int
	Downstream int
}

// Classify runs the tier cascade.
func Classify(in Input, cfg Config) Tier {
	if cfg.T1Complexity > 0 && in.Cyclomatic > cfg.T1Complexity {
		return T1CriticalArchitecture
	}
	deps := in.Upstream + in.Downstream

	switch d := in.Debt.(type) {
	case debt.GodObject, debt.GodModule, debt.ErrorSwallowing, debt.AsyncMisuse:
		return T1CriticalArchitecture
	case debt.ComplexityHotspot:
		// Only the T2 complexity bar promotes a hotspot; it never lands in T3.
		if cfg.T1Complexity > 0 && d.Cyclomatic > cfg.T1Complexity {
			return T1CriticalArchitecture
		}
		if d.Cyclomatic >= cfg.T2Complexity {
			return T2ComplexUntested
		}
		return T4Maintenance
	case debt.TestingGap:
		cyc := max(d.Cyclomatic, in.Cyclomatic)
		if cyc >= cfg.T2Complexity || deps >= cfg.T2Dependency || in.Role == role.EntryPoint {
			return T2ComplexUntested
		}
		if cyc >= cfg.T3Complexity {
			return T3TestingGaps
		}
		return T4Maintenance
	case debt.DeadCode, debt.Duplication, debt.Risk, debt.Todo, debt.Fixme,
		debt.CodeSmell, debt.Complexity, debt.Dependency, debt.ResourceManagement,
		debt.CodeOrganization, debt.TestComplexity, debt.TestQuality,
		debt.TestComplexityHotspot, debt.TestTodo, debt.TestDuplication,
		debt.AllocationInefficiency, debt.StringConcatenation, debt.NestedLoops,
		debt.BlockingIO, debt.SuboptimalDataStructure, debt.FeatureEnvy,
		debt.PrimitiveObsession, debt.MagicValues, debt.AssertionComplexity,
		debt.FlakyTestPattern, debt.ResourceLeak, debt.CollectionInefficiency,
		debt.ScatteredType, debt.OrphanedFunctions, debt.UtilitiesSprawl:
		return T4Maintenance
	default:
		panic(fmt.Sprintf("tier: unhandled debt type %T", in.Debt))
	}
}

// Severity is a display band over the 0-100 score scale.
type Severity string

// Severity bands.
const (
	Critical Severity = "Critical"
	High     Severity = "High"
	Moderate Severity = "Moderate"
	Low      Severity = "Low"
)

// SeverityOf returns the band of a final score.
func SeverityOf(score float64) Severity {
	switch {
	case score >= 90:
		return Critical
	case score >= 70:
		return High
	case score >= 50:
		return Moderate
	default:
		return Low
	}
}
