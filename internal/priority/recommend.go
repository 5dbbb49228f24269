package priority

import (
	"fmt"
	"math"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
)

// Recommendation is the suggested action for one debt item.
type Recommendation struct {
	PrimaryAction string   `json:"primary_action"`
	Rationale     string   `json:"rationale"`
	Steps         []string `json:"steps,omitempty"`
}

// TestsNeeded estimates how many test cases close the coverage gap of
// a function: one per uncovered independent path.
func TestsNeeded(cyclomatic int, coverage float64) int {
	if cyclomatic <= 0 {
		return 0
	}
	gap := 1 - math.Max(0, math.Min(1, coverage))
	return int(math.Ceil(float64(cyclomatic) * gap))
}

// Recommend returns the recommendation for a debt item. fr is the
// function role, or role.Unknown for file-level items.
func Recommend(dt debt.DebtType, fr role.FunctionRole) Recommendation {
	switch d := dt.(type) {
	case debt.TestingGap:
		n := TestsNeeded(d.Cyclomatic, d.Coverage)
		rec := Recommendation{
			PrimaryAction: fmt.Sprintf("Add %d tests for %.0f%% coverage gap", n, (1-d.Coverage)*100),
			Rationale: fmt.Sprintf("Cyclomatic complexity %d with %.0f%% coverage leaves %d paths unverified",
				d.Cyclomatic, d.Coverage*100, n),
			Steps: []string{"Write table-driven tests for the uncovered branches"},
		}
		if d.Cyclomatic > 15 || d.Cognitive > 20 {
			rec.Steps = append(rec.Steps, "Extract complex branches into focused functions")
		}
		if fr == role.EntryPoint {
			rec.Steps = append(rec.Steps, "Cover the entry point with an integration test")
		}
		rec.Steps = append(rec.Steps, "Re-run with -coverprofile to confirm the gap closed")
		return rec
	case debt.ComplexityHotspot:
		target := 10
		return Recommendation{
			PrimaryAction: fmt.Sprintf("Reduce complexity from %d to about %d", d.Cyclomatic, target),
			Rationale: fmt.Sprintf("Cyclomatic %d and cognitive %d make this function hard to change safely",
				d.Cyclomatic, d.Cognitive),
			Steps: []string{
				"Replace nested conditionals with early returns",
				"Extract each decision branch into a named function",
				"Add tests before refactoring",
			},
		}
	case debt.DeadCode:
		return Recommendation{
			PrimaryAction: "Remove unused function",
			Rationale:     fmt.Sprintf("No callers found for this %s function", d.Visibility),
			Steps:         append([]string{"Confirm no reflection or build-tag callers exist"}, d.UsageHints...),
		}
	case debt.Risk:
		return Recommendation{
			PrimaryAction: "Monitor and simplify opportunistically",
			Rationale:     fmt.Sprintf("Risk score %.1f/10", d.RiskScore),
			Steps:         d.Factors,
		}
	case debt.GodObject:
		return Recommendation{
			PrimaryAction: fmt.Sprintf("Split %s by responsibility", d.TypeName),
			Rationale: fmt.Sprintf("%d methods across %d responsibilities exceed the god object limits",
				d.Methods, d.Responsibilities),
			Steps: []string{
				"Group methods by the data they touch",
				"Move each group onto a smaller type",
				"Keep the original type as a thin facade while callers migrate",
			},
		}
	case debt.GodModule:
		return Recommendation{
			PrimaryAction: "Split file into focused files",
			Rationale:     fmt.Sprintf("%d functions in %d lines", d.Functions, d.Lines),
			Steps:         []string{"Move each cohesive group of functions into its own file or package"},
		}
	case debt.UtilitiesSprawl:
		return Recommendation{
			PrimaryAction: "Move helpers next to the types they serve",
			Rationale:     fmt.Sprintf("%d unrelated helpers in one utility file", d.Functions),
		}
	case debt.ErrorSwallowing:
		return Recommendation{
			PrimaryAction: "Handle or return the discarded error",
			Rationale:     fmt.Sprintf("%s (%s)", d.Pattern, d.Context),
			Steps:         []string{"Wrap with fmt.Errorf(\"...: %w\", err) and return it, or log it explicitly"},
		}
	case debt.AsyncMisuse:
		return Recommendation{
			PrimaryAction: "Coordinate goroutines with errgroup or a WaitGroup",
			Rationale:     d.Impact,
		}
	case debt.ResourceLeak:
		return Recommendation{
			PrimaryAction: fmt.Sprintf("Release %s with %s", d.Resource, d.Cleanup),
			Rationale:     "Resources opened without a matching close leak file descriptors",
		}
	case debt.BlockingIO:
		return Recommendation{
			PrimaryAction: "Move blocking call out of the loop",
			Rationale:     fmt.Sprintf("%s %s", d.Operation, d.Context),
		}
	case debt.NestedLoops:
		return Recommendation{
			PrimaryAction: "Flatten nested loops",
			Rationale:     fmt.Sprintf("Loop nesting depth %d", d.Depth),
			Steps:         []string{"Index the inner collection in a map before iterating"},
		}
	case debt.StringConcatenation:
		return Recommendation{
			PrimaryAction: "Use strings.Builder",
			Rationale:     fmt.Sprintf("String += inside %d loop(s) reallocates on every iteration", d.Loops),
		}
	case debt.Duplication, debt.TestDuplication:
		return Recommendation{
			PrimaryAction: "Extract the duplicated body into a shared function",
			Rationale:     "Identical code drifts apart when only one copy is fixed",
		}
	case debt.Todo, debt.TestTodo, debt.Fixme:
		return Recommendation{
			PrimaryAction: "Resolve or file the marker",
			Rationale:     markerText(d),
		}
	case debt.MagicValues:
		return Recommendation{
			PrimaryAction: "Name the literals as constants",
			Rationale:     fmt.Sprintf("%d %s", d.Occurrences, d.Value),
		}
	case debt.TestComplexityHotspot:
		return Recommendation{
			PrimaryAction: "Split the test into table-driven cases",
			Rationale:     fmt.Sprintf("Test cyclomatic %d exceeds %d", d.Cyclomatic, d.Threshold),
		}
	case debt.CodeSmell, debt.Complexity, debt.Dependency, debt.ResourceManagement,
		debt.CodeOrganization, debt.TestComplexity, debt.TestQuality,
		debt.AllocationInefficiency, debt.SuboptimalDataStructure, debt.FeatureEnvy,
		debt.PrimitiveObsession, debt.AssertionComplexity, debt.FlakyTestPattern,
		debt.CollectionInefficiency, debt.ScatteredType, debt.OrphanedFunctions:
		return Recommendation{
			PrimaryAction: "Review " + debt.DisplayName(d),
			Rationale:     debt.CategoryOf(d).Guidance(),
		}
	default:
		panic(fmt.Sprintf("priority: unhandled debt type %T", dt))
	}
}

func markerText(d debt.DebtType) string {
	switch m := d.(type) {
	case debt.Todo:
		return m.Text
	case debt.TestTodo:
		return m.Text
	case debt.Fixme:
		return m.Text
	}
	return ""
}
