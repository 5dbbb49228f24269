package score

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/scaling"
)

// ErrUnknownAggregation is returned for an unrecognised method name.
var ErrUnknownAggregation = errors.New("unknown aggregation method")

// AggregationMethod selects how function scores roll up into a file
// score.
type AggregationMethod string

// Aggregation methods.
const (
	Sum            AggregationMethod = "sum"
	WeightedSum    AggregationMethod = "weighted_sum"
	LogarithmicSum AggregationMethod = "logarithmic_sum"
	MaxPlusAverage AggregationMethod = "max_plus_average"
)

// DefaultMinFunctions is the fewest scored functions a file needs
// before its scores are aggregated.
const DefaultMinFunctions = 2

// AllAggregationMethods lists every method.
var AllAggregationMethods = []AggregationMethod{Sum, WeightedSum, LogarithmicSum, MaxPlusAverage}

// ParseAggregation resolves a method name. The empty string selects
// WeightedSum.
func ParseAggregation(s string) (AggregationMethod, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return WeightedSum, nil
	}
	name = strings.ReplaceAll(name, "-", "_")
	for _, m := range AllAggregationMethods {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAggregation, s)
}

// Aggregation configures file-level score roll-up.
type Aggregation struct {
	Enabled      bool              `yaml:"enabled" toml:"enabled" json:"enabled"`
	Method       AggregationMethod `yaml:"method" toml:"method" json:"method"`
	MinFunctions int               `yaml:"min_functions" toml:"min_functions" json:"min_functions"`
}

// DefaultAggregation enables weighted-sum aggregation.
func DefaultAggregation() Aggregation {
	return Aggregation{Enabled: true, Method: WeightedSum, MinFunctions: DefaultMinFunctions}
}

// Aggregate rolls scores up with method. It reports ok=false when
// fewer than minFunctions scores are given. Negative scores count as
// zero.
//
//	sum              Σs / (1 + ln n)
//	weighted_sum     (Σs² / Σs) * (1 + ln(n)/2)
//	logarithmic_sum  Σ ln(1 + s)
//	max_plus_average max + mean(rest)/2
func Aggregate(scores []float64, method AggregationMethod, minFunctions int) (float64, bool) {
	if minFunctions < 1 {
		minFunctions = 1
	}
	if len(scores) < minFunctions || len(scores) == 0 {
		return 0, false
	}
	s := make([]float64, len(scores))
	for i, v := range scores {
		if v > 0 && !math.IsNaN(v) {
			s[i] = v
		}
	}
	n := float64(len(s))

	switch method {
	case Sum:
		return total(s) / (1 + math.Log(n)), true
	case WeightedSum, "":
		t := total(s)
		if t == 0 {
			return 0, true
		}
		var sq float64
		for _, v := range s {
			sq += v * v
		}
		return (sq / t) * (1 + math.Log(n)/2), true
	case LogarithmicSum:
		var out float64
		for _, v := range s {
			out += math.Log1p(v)
		}
		return out, true
	case MaxPlusAverage:
		sort.Sort(sort.Reverse(sort.Float64Slice(s)))
		if len(s) == 1 {
			return s[0], true
		}
		return s[0] + total(s[1:])/float64(len(s)-1)/2, true
	default:
		return 0, false
	}
}

func total(s []float64) float64 {
	var t float64
	for _, v := range s {
		t += v
	}
	return t
}

// GodRatioBase is the fallback file base when aggregation does not
// apply: ten points per multiple of the god threshold, capped at
// MaxBase.
func GodRatioBase(godScore float64) float64 {
	if godScore <= 0 || math.IsNaN(godScore) {
		return 0
	}
	return math.Min(10*godScore, MaxBase)
}

// FileInput is what the scorer needs for a file-level item.
type FileInput struct {
	Debt debt.DebtType

	// FunctionBases are the base scores of the file's functions.
	FunctionBases []float64

	// GodScore is the threshold ratio reported by the classifier.
	GodScore float64
}

// ComputeFile scores a file-level item. The base is the larger of the
// god ratio fallback and, when aggregation applies, the aggregated
// function base scores. It is clamped to MaxBase and then scaled.
func ComputeFile(in FileInput, agg Aggregation, cfg Config) UnifiedScore {
	base := GodRatioBase(in.GodScore)
	if agg.Enabled {
		if v, ok := Aggregate(in.FunctionBases, agg.Method, agg.MinFunctions); ok {
			base = math.Max(base, v)
		}
	}
	base = math.Min(base, MaxBase)

	s := UnifiedScore{RoleMultiplier: 1, BaseScore: base}
	s.FinalScore, s.ExponentialFactor, s.RiskBoost = scaling.Apply(base, scaling.Context{Debt: in.Debt}, cfg.Scaling)
	return s
}
