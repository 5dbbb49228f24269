package priority

import (
	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/snapshot"
	"github.com/unbound-force/debtmap/internal/tier"
)

// Settings configures one analysis run.
type Settings struct {
	Score       score.Config
	Aggregation score.Aggregation
	Tiers       tier.Config
	Filter      FilterConfig
	Thresholds  debt.Thresholds

	// LineTolerance is the fuzzy line window used to match coverage
	// records to functions.
	LineTolerance int

	// Limit caps the number of reported items; <= 0 means no limit.
	Limit int
}

// DefaultSettings returns the balanced defaults.
func DefaultSettings() Settings {
	return Settings{
		Score:       score.DefaultConfig(),
		Aggregation: score.DefaultAggregation(),
		Tiers:       tier.Balanced(),
		Filter:      DefaultFilterConfig(),
		Thresholds:  debt.DefaultThresholds(),

		LineTolerance: coverage.DefaultLineTolerance,
	}
}

// Result is the outcome of Analyze.
type Result struct {
	// Items are the ranked, filtered, and limited items.
	Items []Item

	Stats        FilterStatistics
	Summaries    []CategorySummary
	Dependencies []CategoryDependency

	// TotalDebtScore sums the final scores of all items that passed
	// filtering, before the limit.
	TotalDebtScore float64

	// TierCounts counts the items that passed filtering per tier,
	// before the limit.
	TierCounts map[tier.Tier]int

	FunctionsAnalyzed int
	FilesAnalyzed     int
	HasCoverage       bool
}

// CountByTier returns how many reported items fall in each tier.
func (r Result) CountByTier() map[tier.Tier]int {
	out := make(map[tier.Tier]int, len(tier.All))
	for _, it := range r.Items {
		out[it.Tier()]++
	}
	return out
}

// Analyze runs the whole engine over snap.
func Analyze(snap *snapshot.Snapshot, s Settings) Result {
	fnItems := BuildFunctionItems(snap, s)
	ClassifyTiers(fnItems, s.Tiers)
	fileItems := BuildFileItems(snap, fnItems, s)

	all := make([]Item, 0, len(fnItems)+len(fileItems))
	for _, it := range fnItems {
		all = append(all, FunctionItem(it))
	}
	for _, it := range fileItems {
		all = append(all, FileItem(it))
	}

	kept, stats := FilterSortLimit(all, s.Filter, 0)
	summaries := Summarize(kept)

	var total float64
	counts := make(map[tier.Tier]int, len(tier.All))
	for _, it := range kept {
		total += it.Score()
		counts[it.Tier()]++
	}
	return Result{
		Items:             Limit(kept, s.Limit),
		Stats:             stats,
		Summaries:         summaries,
		Dependencies:      Dependencies(kept, summaries),
		TotalDebtScore:    total,
		TierCounts:        counts,
		FunctionsAnalyzed: len(snap.Functions),
		FilesAnalyzed:     len(snap.Files),
		HasCoverage:       snap.Coverage != nil,
	}
}

// BuildFunctionItems produces the primary item of every function plus
// its orthogonal items. Tiers are not assigned.
func BuildFunctionItems(snap *snapshot.Snapshot, s Settings) []*UnifiedDebtItem {
	g := snap.Graph
	roles := role.ClassifyAll(snap.Functions, g)
	cov := snap.Coverage.WithTolerance(s.LineTolerance)
	var propagated map[callgraph.FunctionID]coverage.TransitiveCoverage
	if cov != nil {
		propagated = coverage.PropagateAll(g, cov)
	}
	var out []*UnifiedDebtItem

	for _, m := range snap.Functions {
		var tc *coverage.TransitiveCoverage
		if cov != nil {
			v, ok := propagated[m.ID]
			if !ok {
				v = coverage.Propagate(m.ID, g, cov)
			}
			tc = &v
		}
		callers := g.CallersOf(m.ID)
		callees := g.CalleesOf(m.ID)
		r := roles[m.ID]
		facts := debt.Facts{
			Upstream:     len(callers),
			Downstream:   len(callees),
			IsEntryPoint: g.IsEntryPoint(m.ID),
			IsTestHelper: g.IsTestHelper(m.ID),
		}

		primary := debt.ClassifyFunction(m, tc, facts, s.Thresholds)
		kinds := append([]debt.DebtType{primary}, debt.ClassifyOrthogonal(m, s.Thresholds)...)

		for _, d := range kinds {
			out = append(out, &UnifiedDebtItem{
				Location:               Location{File: m.ID.File, Function: m.ID.Name, Line: m.ID.Line},
				Debt:                   d,
				Score:                  score.Compute(score.Input{Metrics: m, Debt: d, Role: r, Upstream: len(callers), Downstream: len(callees), Coverage: tc}, s.Score),
				Role:                   r,
				UpstreamDependencies:   len(callers),
				DownstreamDependencies: len(callees),
				UpstreamCallers:        names(callers),
				DownstreamCallees:      names(callees),
				Recommendation:         Recommend(d, r),
				Coverage:               tc,
				Cyclomatic:             m.Cyclomatic,
				Cognitive:              m.Cognitive,
				Nesting:                m.Nesting,
				Length:                 m.Length,
				Criticality:            g.Criticality(m.ID),
			})
		}
	}
	return out
}

// BuildFileItems produces the architecture items of every file, scored
// from the base scores of the file's primary function items. Tiers are
// assigned.
func BuildFileItems(snap *snapshot.Snapshot, fnItems []*UnifiedDebtItem, s Settings) []*FileDebtItem {
	primaryBases := make(map[string][]float64)
	seen := make(map[callgraph.FunctionID]bool)
	for _, it := range fnItems {
		id := callgraph.FunctionID{File: it.Location.File, Name: it.Location.Function, Line: it.Location.Line}
		if seen[id] {
			continue
		}
		seen[id] = true
		primaryBases[it.Location.File] = append(primaryBases[it.Location.File], it.Score.BaseScore)
	}

	var out []*FileDebtItem
	for _, f := range snap.Files {
		for _, d := range debt.ClassifyFile(f, s.Thresholds) {
			bases := primaryBases[f.Path]
			sc := score.ComputeFile(score.FileInput{
				Debt:          d,
				FunctionBases: bases,
				GodScore:      godScore(d, s.Thresholds),
			}, s.Aggregation, s.Score)
			out = append(out, &FileDebtItem{
				Location:       Location{File: f.Path, Function: typeName(d), Line: fileLine(f, d)},
				Debt:           d,
				Score:          sc,
				Lines:          f.Lines,
				Functions:      f.Functions,
				Aggregated:     len(bases),
				Recommendation: Recommend(d, role.Unknown),
				Tier:           tier.Classify(tier.Input{Debt: d}, s.Tiers),
			})
		}
	}
	return out
}

func godScore(d debt.DebtType, t debt.Thresholds) float64 {
	switch v := d.(type) {
	case debt.GodObject:
		return v.GodScore
	case debt.GodModule:
		return v.GodScore
	case debt.UtilitiesSprawl:
		if t.UtilitiesFunctions > 0 {
			return float64(v.Functions) / float64(t.UtilitiesFunctions) / 2
		}
	}
	return 0
}

func typeName(d debt.DebtType) string {
	if g, ok := d.(debt.GodObject); ok {
		return g.TypeName
	}
	return ""
}

// fileLine is the declaration line of a god object's type, or 1 for
// findings about the whole file.
func fileLine(f snapshot.FileMetrics, d debt.DebtType) int {
	if g, ok := d.(debt.GodObject); ok {
		for _, ty := range f.Types {
			if ty.Name == g.TypeName && ty.Line > 0 {
				return ty.Line
			}
		}
	}
	return 1
}

func names(ids []callgraph.FunctionID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Name
	}
	return out
}
