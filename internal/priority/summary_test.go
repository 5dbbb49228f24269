package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/tier"
)

func TestSummarize(t *testing.T) {
	var items []Item
	for i := 0; i < 7; i++ {
		items = append(items, FunctionItem(item("q.go", i+1, debt.ComplexityHotspot{}, float64(80-i), tier.T2ComplexUntested)))
	}
	items = append(items, FunctionItem(item("p.go", 1, debt.NestedLoops{Depth: 3}, 40, tier.T4Maintenance)))

	got := Summarize(items)

	require.Len(t, got, 2)
	perf, quality := got[0], got[1]

	assert.Equal(t, debt.Performance, perf.Category)
	assert.Equal(t, 1, perf.ItemCount)
	assert.Equal(t, 4, perf.EstimatedEffortHours)

	assert.Equal(t, debt.CodeQuality, quality.Category)
	assert.Equal(t, 7, quality.ItemCount)
	assert.InDelta(t, 77.0, quality.AverageSeverity, 1e-9)
	assert.Equal(t, 28, quality.EstimatedEffortHours)
	require.Len(t, quality.TopItems, 5)
	assert.Equal(t, 80.0, quality.TopItems[0].Score())
}

func TestEffortPerItem(t *testing.T) {
	assert.Equal(t, 16, effortPerItem(debt.Architecture, 95))
	assert.Equal(t, 8, effortPerItem(debt.Architecture, 70))
	assert.Equal(t, 4, effortPerItem(debt.Architecture, 10))
	assert.Equal(t, 4, effortPerItem(debt.Testing, 70))
	assert.Equal(t, 2, effortPerItem(debt.Testing, 69))
	assert.Equal(t, 8, effortPerItem(debt.Performance, 75))
	assert.Equal(t, 2, effortPerItem(debt.CodeQuality, 50))
}

func TestDependencies(t *testing.T) {
	items := []Item{
		FunctionItem(item("a.go", 1, debt.AsyncMisuse{}, 30, tier.T1CriticalArchitecture)),
		FunctionItem(item("a.go", 2, debt.ComplexityHotspot{}, 75, tier.T2ComplexUntested)),
	}

	deps := Dependencies(items, Summarize(items))

	require.Len(t, deps, 2)
	assert.Equal(t, debt.Performance, deps[0].Source)
	assert.Equal(t, debt.Architecture, deps[0].Target)
	assert.Equal(t, ImpactMedium, deps[0].Impact)
	assert.Equal(t, debt.CodeQuality, deps[1].Source)
	assert.Equal(t, debt.Testing, deps[1].Target)
}

func TestDependencies_None(t *testing.T) {
	items := []Item{FunctionItem(item("a.go", 2, debt.ComplexityHotspot{}, 40, tier.T2ComplexUntested))}
	assert.Empty(t, Dependencies(items, Summarize(items)))
}

func TestRecommend_HandlesEveryKind(t *testing.T) {
	samples := []debt.DebtType{
		debt.Todo{}, debt.Fixme{}, debt.CodeSmell{}, debt.Complexity{}, debt.Dependency{},
		debt.ResourceManagement{}, debt.CodeOrganization{}, debt.TestComplexity{},
		debt.TestQuality{}, debt.TestingGap{}, debt.ComplexityHotspot{}, debt.DeadCode{},
		debt.Duplication{}, debt.Risk{}, debt.TestComplexityHotspot{}, debt.TestTodo{},
		debt.TestDuplication{}, debt.ErrorSwallowing{}, debt.AllocationInefficiency{},
		debt.StringConcatenation{}, debt.NestedLoops{}, debt.BlockingIO{},
		debt.SuboptimalDataStructure{}, debt.GodObject{}, debt.GodModule{},
		debt.FeatureEnvy{}, debt.PrimitiveObsession{}, debt.MagicValues{},
		debt.AssertionComplexity{}, debt.FlakyTestPattern{}, debt.AsyncMisuse{},
		debt.ResourceLeak{}, debt.CollectionInefficiency{}, debt.ScatteredType{},
		debt.OrphanedFunctions{}, debt.UtilitiesSprawl{},
	}
	require.Len(t, samples, len(debt.AllKinds))
	for _, s := range samples {
		var rec Recommendation
		require.NotPanics(t, func() { rec = Recommend(s, role.Unknown) }, string(s.Kind()))
		assert.NotEmpty(t, rec.PrimaryAction, string(s.Kind()))
	}
}

func TestRecommend_TestingGap(t *testing.T) {
	rec := Recommend(debt.TestingGap{Coverage: 0.25, Cyclomatic: 18, Cognitive: 10}, role.EntryPoint)

	assert.Equal(t, "Add 14 tests for 75% coverage gap", rec.PrimaryAction)
	assert.Contains(t, rec.Steps, "Extract complex branches into focused functions")
	assert.Contains(t, rec.Steps, "Cover the entry point with an integration test")
}

func TestTestsNeeded(t *testing.T) {
	assert.Equal(t, 10, TestsNeeded(10, 0))
	assert.Equal(t, 5, TestsNeeded(10, 0.5))
	assert.Equal(t, 1, TestsNeeded(10, 0.95))
	assert.Equal(t, 0, TestsNeeded(10, 1))
	assert.Equal(t, 0, TestsNeeded(0, 0))
}
