package debt

import (
	"fmt"
	"strings"
)

// Category is a coarse, cross-cutting grouping of debt types.
type Category string

// Category constants.
const (
	Architecture Category = "Architecture"
	Testing      Category = "Testing"
	Performance  Category = "Performance"
	CodeQuality  Category = "CodeQuality"
)

// AllCategories lists the categories in reporting order.
var AllCategories = []Category{Architecture, Testing, Performance, CodeQuality}

// CategoryOf maps a debt type onto its category.
func CategoryOf(d DebtType) Category {
	switch d.(type) {
	case GodObject, GodModule, FeatureEnvy, PrimitiveObsession,
		ScatteredType, OrphanedFunctions, UtilitiesSprawl:
		return Architecture
	case TestingGap, TestComplexityHotspot, TestTodo, TestDuplication,
		AssertionComplexity, FlakyTestPattern:
		return Testing
	case AsyncMisuse, CollectionInefficiency, NestedLoops, BlockingIO,
		AllocationInefficiency, StringConcatenation, SuboptimalDataStructure,
		ResourceLeak:
		return Performance
	case ComplexityHotspot, DeadCode, Duplication, Risk, ErrorSwallowing,
		Todo, Fixme, CodeSmell, Complexity, Dependency, ResourceManagement,
		CodeOrganization, TestComplexity, TestQuality, MagicValues:
		return CodeQuality
	default:
		panic(fmt.Sprintf("debt: unhandled debt type %T", d))
	}
}

// ParseCategory accepts the canonical names plus common aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "architecture", "arch":
		return Architecture, nil
	case "testing", "test", "tests":
		return Testing, nil
	case "performance", "perf":
		return Performance, nil
	case "codequality", "code_quality", "code-quality", "quality":
		return CodeQuality, nil
	}
	return "", fmt.Errorf("unknown debt category %q", s)
}

// Guidance returns the strategic advice shown next to a category.
func (c Category) Guidance() string {
	switch c {
	case Architecture:
		return "Break large types and files into focused units; architectural fixes unblock the rest."
	case Testing:
		return "Add tests for complex, untested logic first; coverage makes every other refactor safer."
	case Performance:
		return "Profile before changing; fix the hot paths that loops and blocking calls amplify."
	case CodeQuality:
		return "Reduce complexity and remove dead code in small, reviewable steps."
	}
	return ""
}

// DisplayName returns a short human label for a debt type.
func DisplayName(d DebtType) string {
	switch d.(type) {
	case Todo:
		return "TODO"
	case Fixme:
		return "FIXME"
	case CodeSmell:
		return "Code Smell"
	case Complexity:
		return "Complexity"
	case Dependency:
		return "Dependency"
	case ResourceManagement:
		return "Resource Management"
	case CodeOrganization:
		return "Code Organization"
	case TestComplexity:
		return "Test Complexity"
	case TestQuality:
		return "Test Quality"
	case TestingGap:
		return "Testing Gap"
	case ComplexityHotspot:
		return "Complexity Hotspot"
	case DeadCode:
		return "Dead Code"
	case Duplication:
		return "Duplication"
	case Risk:
		return "Risk"
	case TestComplexityHotspot:
		return "Test Complexity Hotspot"
	case TestTodo:
		return "Test TODO"
	case TestDuplication:
		return "Test Duplication"
	case ErrorSwallowing:
		return "Error Swallowing"
	case AllocationInefficiency:
		return "Allocation Inefficiency"
	case StringConcatenation:
		return "String Concatenation"
	case NestedLoops:
		return "Nested Loops"
	case BlockingIO:
		return "Blocking I/O"
	case SuboptimalDataStructure:
		return "Suboptimal Data Structure"
	case GodObject:
		return "God Object"
	case GodModule:
		return "God Module"
	case FeatureEnvy:
		return "Feature Envy"
	case PrimitiveObsession:
		return "Primitive Obsession"
	case MagicValues:
		return "Magic Values"
	case AssertionComplexity:
		return "Assertion Complexity"
	case FlakyTestPattern:
		return "Flaky Test Pattern"
	case AsyncMisuse:
		return "Async Misuse"
	case ResourceLeak:
		return "Resource Leak"
	case CollectionInefficiency:
		return "Collection Inefficiency"
	case ScatteredType:
		return "Scattered Type"
	case OrphanedFunctions:
		return "Orphaned Functions"
	case UtilitiesSprawl:
		return "Utilities Sprawl"
	default:
		panic(fmt.Sprintf("debt: unhandled debt type %T", d))
	}
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if strings.ToLower(string(k)) == want {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown debt kind %q", s)
}
