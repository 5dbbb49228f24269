package priority

import (
	"fmt"

	"github.com/unbound-force/debtmap/internal/debt"
)

// topItemsPerCategory is how many items a category summary lists.
const topItemsPerCategory = 5

// CategorySummary totals the items of one debt category.
type CategorySummary struct {
	Category             debt.Category `json:"category"`
	TotalScore           float64       `json:"total_score"`
	ItemCount            int           `json:"item_count"`
	AverageSeverity      float64       `json:"average_severity"`
	EstimatedEffortHours int           `json:"estimated_effort_hours"`
	TopItems             []Item        `json:"-"`
}

// Impact rates how strongly one category blocks another.
type Impact string

// Impact levels.
const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// CategoryDependency records that fixing Source eases work in Target.
type CategoryDependency struct {
	Source      debt.Category `json:"source"`
	Target      debt.Category `json:"target"`
	Impact      Impact        `json:"impact"`
	Description string        `json:"description"`
}

// Summarize groups items by category. Categories without items are
// left out; the rest follow debt.AllCategories order. Items are
// expected in ranked order, so the first items of each category are
// its top items.
func Summarize(items []Item) []CategorySummary {
	byCat := make(map[debt.Category][]Item)
	for _, it := range items {
		c := debt.CategoryOf(it.Debt())
		byCat[c] = append(byCat[c], it)
	}

	var out []CategorySummary
	for _, c := range debt.AllCategories {
		group := byCat[c]
		if len(group) == 0 {
			continue
		}
		s := CategorySummary{Category: c, ItemCount: len(group)}
		for _, it := range group {
			s.TotalScore += it.Score()
		}
		s.AverageSeverity = s.TotalScore / float64(len(group))
		s.EstimatedEffortHours = effortPerItem(c, s.AverageSeverity) * len(group)
		n := min(topItemsPerCategory, len(group))
		s.TopItems = append([]Item(nil), group[:n]...)
		out = append(out, s)
	}
	return out
}

// effortPerItem is the estimated hours to resolve one item of a
// category at the given average severity.
func effortPerItem(c debt.Category, avgSeverity float64) int {
	switch c {
	case debt.Architecture:
		switch {
		case avgSeverity >= 90:
			return 16
		case avgSeverity >= 70:
			return 8
		default:
			return 4
		}
	case debt.Performance:
		if avgSeverity >= 70 {
			return 8
		}
		return 4
	default:
		if avgSeverity >= 70 {
			return 4
		}
		return 2
	}
}

// Dependencies derives cross-category dependencies from the items and
// their summaries.
func Dependencies(items []Item, summaries []CategorySummary) []CategoryDependency {
	var hasGod, hasAsync bool
	for _, it := range items {
		switch it.Debt().(type) {
		case debt.GodObject, debt.GodModule:
			hasGod = true
		case debt.AsyncMisuse:
			hasAsync = true
		}
	}

	var out []CategoryDependency
	if hasGod {
		out = append(out, CategoryDependency{
			Source:      debt.Architecture,
			Target:      debt.Testing,
			Impact:      ImpactHigh,
			Description: "Oversized types and files are hard to test; split them before writing tests",
		})
	}
	if hasAsync {
		out = append(out, CategoryDependency{
			Source:      debt.Performance,
			Target:      debt.Architecture,
			Impact:      ImpactMedium,
			Description: "Uncoordinated goroutines need a structural fix, not a local one",
		})
	}
	for _, s := range summaries {
		if s.Category == debt.CodeQuality && s.AverageSeverity >= 70 {
			out = append(out, CategoryDependency{
				Source:      debt.CodeQuality,
				Target:      debt.Testing,
				Impact:      ImpactMedium,
				Description: fmt.Sprintf("Complex code (average severity %.0f) needs simplifying before tests are practical", s.AverageSeverity),
			})
		}
	}
	return out
}
