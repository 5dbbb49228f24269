package debt

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// Thresholds configures the classification rules.
type Thresholds struct {
	TestingGapCoverage  float64 `yaml:"testing_gap_coverage" toml:"testing_gap_coverage" json:"testing_gap_coverage"`
	TrivialCyclomatic   int     `yaml:"trivial_cyclomatic" toml:"trivial_cyclomatic" json:"trivial_cyclomatic"`
	TrivialCognitive    int     `yaml:"trivial_cognitive" toml:"trivial_cognitive" json:"trivial_cognitive"`
	HotspotCyclomatic   int     `yaml:"hotspot_cyclomatic" toml:"hotspot_cyclomatic" json:"hotspot_cyclomatic"`
	HotspotCognitive    int     `yaml:"hotspot_cognitive" toml:"hotspot_cognitive" json:"hotspot_cognitive"`
	GodObjectMethods    int     `yaml:"god_object_methods" toml:"god_object_methods" json:"god_object_methods"`
	GodObjectResp       int     `yaml:"god_object_responsibilities" toml:"god_object_responsibilities" json:"god_object_responsibilities"`
	GodObjectMinMethods int     `yaml:"god_object_min_methods" toml:"god_object_min_methods" json:"god_object_min_methods"`
	GodModuleFunctions  int     `yaml:"god_module_functions" toml:"god_module_functions" json:"god_module_functions"`
	GodModuleLines      int     `yaml:"god_module_lines" toml:"god_module_lines" json:"god_module_lines"`
	NestedLoopDepth     int     `yaml:"nested_loop_depth" toml:"nested_loop_depth" json:"nested_loop_depth"`
	UtilitiesFunctions  int     `yaml:"utilities_functions" toml:"utilities_functions" json:"utilities_functions"`
	MagicNumbers        int     `yaml:"magic_numbers" toml:"magic_numbers" json:"magic_numbers"`
}

// DefaultThresholds returns the standard classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TestingGapCoverage:  0.2,
		TrivialCyclomatic:   3,
		TrivialCognitive:    5,
		HotspotCyclomatic:   10,
		HotspotCognitive:    15,
		GodObjectMethods:    20,
		GodObjectResp:       5,
		GodObjectMinMethods: 10,
		GodModuleFunctions:  50,
		GodModuleLines:      1000,
		NestedLoopDepth:     3,
		UtilitiesFunctions:  15,
		MagicNumbers:        5,
	}
}

// Facts are call graph observations about a function.
type Facts struct {
	Upstream     int
	Downstream   int
	IsEntryPoint bool
	IsTestHelper bool
}

// IsTrivial reports whether a function is too simple to need tests.
func (t Thresholds) IsTrivial(m snapshot.FunctionMetrics) bool {
	return m.Cyclomatic <= t.TrivialCyclomatic && m.Cognitive <= t.TrivialCognitive
}

// ClassifyFunction returns the primary debt classification of a
// function. tc is nil when no coverage data was supplied for the run.
// The result is never nil; Risk is the fallback.
func ClassifyFunction(m snapshot.FunctionMetrics, tc *coverage.TransitiveCoverage, facts Facts, t Thresholds) DebtType {
	hot := m.Cyclomatic > t.HotspotCyclomatic || m.Cognitive > t.HotspotCognitive

	if m.IsTest {
		if hot {
			return TestComplexityHotspot{
				Cyclomatic: m.Cyclomatic,
				Cognitive:  m.Cognitive,
				Threshold:  t.HotspotCyclomatic,
			}
		}
		return riskOf(m, tc)
	}

	if tc != nil && tc.Effective() < t.TestingGapCoverage && !t.IsTrivial(m) {
		return TestingGap{
			Coverage:   tc.Effective(),
			Cyclomatic: m.Cyclomatic,
			Cognitive:  m.Cognitive,
		}
	}

	if hot {
		return ComplexityHotspot{Cyclomatic: m.Cyclomatic, Cognitive: m.Cognitive}
	}

	if isDeadCode(m, facts) {
		return DeadCode{
			Visibility: string(m.Visibility),
			Cyclomatic: m.Cyclomatic,
			Cognitive:  m.Cognitive,
			UsageHints: usageHints(m),
		}
	}

	return riskOf(m, tc)
}

// ClassifyOrthogonal returns findings that are independent of the
// primary classification, such as duplication or swallowed errors.
// The result is ordered by kind name for determinism.
func ClassifyOrthogonal(m snapshot.FunctionMetrics, t Thresholds) []DebtType {
	var out []DebtType
	s := m.Signals

	if s.Duplicate != nil && s.Duplicate.Instances > 1 {
		if m.IsTest {
			out = append(out, TestDuplication{
				Instances:  s.Duplicate.Instances,
				TotalLines: s.Duplicate.TotalLines,
				Similarity: 1.0,
			})
		} else {
			out = append(out, Duplication{Instances: s.Duplicate.Instances, TotalLines: s.Duplicate.TotalLines})
		}
	}
	if len(s.SwallowedErrors) > 0 {
		first := s.SwallowedErrors[0]
		ctx := first.Context
		if n := len(s.SwallowedErrors); n > 1 {
			ctx = fmt.Sprintf("%s (+%d more)", ctx, n-1)
		}
		out = append(out, ErrorSwallowing{Pattern: first.Pattern, Context: strings.TrimSpace(ctx)})
	}
	if t.NestedLoopDepth > 0 && s.MaxLoopDepth >= t.NestedLoopDepth {
		out = append(out, NestedLoops{Depth: s.MaxLoopDepth})
	}
	if s.StringConcatLoops > 0 {
		out = append(out, StringConcatenation{Loops: s.StringConcatLoops})
	}
	if len(s.BlockingInLoop) > 0 {
		out = append(out, BlockingIO{Operation: s.BlockingInLoop[0].Pattern, Context: "inside loop"})
	}
	if len(s.UnclosedResources) > 0 {
		out = append(out, ResourceLeak{Resource: s.UnclosedResources[0].Pattern, Cleanup: "defer Close()"})
	}
	if len(s.UnsyncedGoroutine) > 0 {
		out = append(out, AsyncMisuse{
			Pattern: s.UnsyncedGoroutine[0].Pattern,
			Impact:  "goroutines started in a loop without a WaitGroup or errgroup",
		})
	}
	if t.MagicNumbers > 0 && s.MagicNumbers >= t.MagicNumbers {
		out = append(out, MagicValues{Value: "numeric literals", Occurrences: s.MagicNumbers})
	}
	out = append(out, markerDebt(m)...)

	sortByKind(out)
	return out
}

func markerDebt(m snapshot.FunctionMetrics) []DebtType {
	var out []DebtType
	var todo, fixme bool
	for _, mk := range m.Signals.Markers {
		switch mk.Kind {
		case snapshot.MarkerTodo:
			if todo {
				continue
			}
			todo = true
			if m.IsTest {
				out = append(out, TestTodo{Text: mk.Text})
			} else {
				out = append(out, Todo{Text: mk.Text})
			}
		case snapshot.MarkerFixme:
			if fixme {
				continue
			}
			fixme = true
			out = append(out, Fixme{Text: mk.Text})
		}
	}
	return out
}

// ClassifyFile returns architecture findings for one file: god objects
// for oversized types, a god module for an oversized file, and
// utilities sprawl for catch-all helper files.
func ClassifyFile(f snapshot.FileMetrics, t Thresholds) []DebtType {
	if f.IsTest {
		return nil
	}
	var out []DebtType
	for _, ty := range f.Types {
		byMethods := ty.Methods >= t.GodObjectMethods
		byResp := ty.Responsibilities >= t.GodObjectResp && ty.Methods >= t.GodObjectMinMethods
		if !byMethods && !byResp {
			continue
		}
		out = append(out, GodObject{
			TypeName:         ty.Name,
			Methods:          ty.Methods,
			Fields:           ty.Fields,
			Responsibilities: ty.Responsibilities,
			GodScore:         godObjectScore(ty, t),
			Lines:            f.Lines,
		})
	}

	if f.Functions >= t.GodModuleFunctions || f.Lines >= t.GodModuleLines {
		out = append(out, GodModule{
			Functions:        f.Functions,
			Lines:            f.Lines,
			Responsibilities: len(f.Types),
			GodScore:         godModuleScore(f, t),
		})
	}

	base := strings.ToLower(filepath.Base(f.Path))
	if (strings.Contains(base, "util") || strings.Contains(base, "helper") || strings.Contains(base, "common")) &&
		t.UtilitiesFunctions > 0 && f.Functions >= t.UtilitiesFunctions {
		out = append(out, UtilitiesSprawl{Functions: f.Functions, DistinctTypes: len(f.Types)})
	}
	return out
}

// godObjectScore is the largest threshold ratio among the evidence, so
// 1.0 means "just at the limit". Unknown field counts are left out.
func godObjectScore(ty snapshot.TypeMetrics, t Thresholds) float64 {
	score := ratio(ty.Methods, t.GodObjectMethods)
	if r := ratio(ty.Responsibilities, t.GodObjectResp); r > score {
		score = r
	}
	return score
}

func godModuleScore(f snapshot.FileMetrics, t Thresholds) float64 {
	score := ratio(f.Functions, t.GodModuleFunctions)
	if r := ratio(f.Lines, t.GodModuleLines); r > score {
		score = r
	}
	return score
}

func ratio(v, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(v) / float64(limit)
}

// frameworkNames are called by the runtime, the toolchain, or through
// well-known interfaces, so having no static caller is expected.
var frameworkNames = map[string]bool{
	"main": true, "init": true,
	"String": true, "Error": true, "GoString": true, "Format": true,
	"ServeHTTP": true, "Unwrap": true, "Is": true, "As": true,
	"MarshalJSON": true, "UnmarshalJSON": true, "MarshalText": true, "UnmarshalText": true,
	"MarshalYAML": true, "UnmarshalYAML": true, "MarshalBinary": true, "UnmarshalBinary": true,
	"Len": true, "Less": true, "Swap": true, "Read": true, "Write": true, "Close": true,
	"Init": true, "Update": true, "View": true,
}

var frameworkPrefixes = []string{"Test", "Benchmark", "Example", "Fuzz", "Handle", "handle", "New", "new", "On", "on"}

func isDeadCode(m snapshot.FunctionMetrics, facts Facts) bool {
	if facts.Upstream > 0 || facts.IsEntryPoint || m.IsTest || m.IsClosure || facts.IsTestHelper {
		return false
	}
	name := bareName(m.ID.Name)
	if frameworkNames[name] {
		return false
	}
	for _, p := range frameworkPrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	// Exported API of an importable package may have callers outside
	// the analyzed code.
	if m.Visibility == snapshot.Exported && isImportable(m) {
		return false
	}
	return true
}

func usageHints(m snapshot.FunctionMetrics) []string {
	hints := []string{"no callers found in the analyzed packages"}
	if m.Visibility == snapshot.Exported {
		hints = append(hints, "exported but not importable outside this module; safe to remove if unused")
	} else {
		hints = append(hints, "unexported; removal cannot break other packages")
	}
	if m.Receiver != "" {
		hints = append(hints, "method may satisfy an interface checked only at runtime")
	}
	return hints
}

func isImportable(m snapshot.FunctionMetrics) bool {
	if m.Package == "main" {
		return false
	}
	p := filepath.ToSlash(m.ID.File)
	return !strings.Contains(p, "/internal/") && !strings.HasPrefix(p, "internal/")
}

// bareName strips a "(*Recv)." receiver prefix.
func bareName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sortByKind(ds []DebtType) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Kind() < ds[j].Kind() })
}
