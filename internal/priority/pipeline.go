package priority

import (
	"sort"

	"github.com/unbound-force/debtmap/internal/tier"
)

// DefaultMinScore is the lowest final score kept by default.
const DefaultMinScore = 3.0

// FilterConfig controls which items survive filtering.
type FilterConfig struct {
	MinScore float64 `yaml:"min_score" toml:"min_score" json:"min_score"`
	ShowT4   bool    `yaml:"show_t4" toml:"show_t4" json:"show_t4"`

	// MinCyclomatic drops function items below it. Zero disables the
	// check.
	MinCyclomatic int `yaml:"min_cyclomatic" toml:"min_cyclomatic" json:"min_cyclomatic"`
}

// DefaultFilterConfig hides low scores and maintenance items.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{MinScore: DefaultMinScore}
}

// ClassifyTiers assigns a tier to every function item.
func ClassifyTiers(items []*UnifiedDebtItem, cfg tier.Config) {
	for _, it := range items {
		it.Tier = tier.Classify(tierInput(it), cfg)
	}
}

func tierInput(it *UnifiedDebtItem) tier.Input {
	return tier.Input{
		Debt:       it.Debt,
		Role:       it.Role,
		Cyclomatic: it.Cyclomatic,
		Upstream:   it.UpstreamDependencies,
		Downstream: it.DownstreamDependencies,
	}
}

// Sort orders items by final score descending, breaking ties by file,
// line, and kind. Equal items keep their relative order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if sa, sb := a.Score(), b.Score(); sa != sb {
			return sa > sb
		}
		if a.File() != b.File() {
			return a.File() < b.File()
		}
		if a.Line() != b.Line() {
			return a.Line() < b.Line()
		}
		return a.Kind() < b.Kind()
	})
}

// Filter drops duplicates, low scores, simple functions, and hidden
// tiers, in that order. Each dropped item is counted exactly once.
// The first item seen for a (file, line, kind) key claims it, whether
// or not that item survives the later checks.
func Filter(items []Item, cfg FilterConfig) ([]Item, FilterStatistics) {
	var stats FilterStatistics
	seen := make(map[dupKey]struct{}, len(items))
	out := make([]Item, 0, len(items))

	for _, it := range items {
		stats.TotalItemsProcessed++

		k := keyOf(it)
		if _, dup := seen[k]; dup {
			stats.FilteredAsDuplicate++
			continue
		}
		seen[k] = struct{}{}

		if it.Score() < cfg.MinScore {
			stats.FilteredByScore++
			continue
		}
		if fn, ok := it.AsFunction(); ok && cfg.MinCyclomatic > 0 && fn.Cyclomatic < cfg.MinCyclomatic {
			stats.FilteredByComplexity++
			continue
		}
		if it.Tier() == tier.T4Maintenance && !cfg.ShowT4 {
			stats.FilteredByTier++
			continue
		}

		stats.ItemsAdded++
		out = append(out, it)
	}
	return out, stats
}

// Limit returns at most n items. n <= 0 means no limit.
func Limit(items []Item, n int) []Item {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// FilterSortLimit sorts, filters, and truncates items whose tiers are
// already assigned. The input slice is not modified.
func FilterSortLimit(items []Item, cfg FilterConfig, limit int) ([]Item, FilterStatistics) {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	Sort(sorted)
	kept, stats := Filter(sorted, cfg)
	return Limit(kept, limit), stats
}

// AnalyzeAndFilter runs the full pipeline over function items:
// tiers are assigned in place, then the items are sorted, filtered,
// and truncated.
func AnalyzeAndFilter(items []*UnifiedDebtItem, tierCfg tier.Config, filterCfg FilterConfig, limit int) ([]*UnifiedDebtItem, FilterStatistics) {
	ClassifyTiers(items, tierCfg)

	wrapped := make([]Item, len(items))
	for i, it := range items {
		wrapped[i] = FunctionItem(it)
	}
	kept, stats := FilterSortLimit(wrapped, filterCfg, limit)

	out := make([]*UnifiedDebtItem, len(kept))
	for i, it := range kept {
		out[i], _ = it.AsFunction()
	}
	return out, stats
}
