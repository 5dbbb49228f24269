// Package debt defines the closed set of technical debt classifications
// and the rules that map raw function and file evidence onto them.
//
// DebtType is a sealed interface: only the variant structs in this
// package implement it. Every consumer switches over the concrete
// types, and AllKinds lets tests check that each switch is total.
package debt

// Kind is the discriminant of a DebtType.
type Kind string

// Kind constants, one per variant.
const (
	KindTodo                    Kind = "Todo"
	KindFixme                   Kind = "Fixme"
	KindCodeSmell               Kind = "CodeSmell"
	KindComplexity              Kind = "Complexity"
	KindDependency              Kind = "Dependency"
	KindResourceManagement      Kind = "ResourceManagement"
	KindCodeOrganization        Kind = "CodeOrganization"
	KindTestComplexity          Kind = "TestComplexity"
	KindTestQuality             Kind = "TestQuality"
	KindTestingGap              Kind = "TestingGap"
	KindComplexityHotspot       Kind = "ComplexityHotspot"
	KindDeadCode                Kind = "DeadCode"
	KindDuplication             Kind = "Duplication"
	KindRisk                    Kind = "Risk"
	KindTestComplexityHotspot   Kind = "TestComplexityHotspot"
	KindTestTodo                Kind = "TestTodo"
	KindTestDuplication         Kind = "TestDuplication"
	KindErrorSwallowing         Kind = "ErrorSwallowing"
	KindAllocationInefficiency  Kind = "AllocationInefficiency"
	KindStringConcatenation     Kind = "StringConcatenation"
	KindNestedLoops             Kind = "NestedLoops"
	KindBlockingIO              Kind = "BlockingIO"
	KindSuboptimalDataStructure Kind = "SuboptimalDataStructure"
	KindGodObject               Kind = "GodObject"
	KindGodModule               Kind = "GodModule"
	KindFeatureEnvy             Kind = "FeatureEnvy"
	KindPrimitiveObsession      Kind = "PrimitiveObsession"
	KindMagicValues             Kind = "MagicValues"
	KindAssertionComplexity     Kind = "AssertionComplexity"
	KindFlakyTestPattern        Kind = "FlakyTestPattern"
	KindAsyncMisuse             Kind = "AsyncMisuse"
	KindResourceLeak            Kind = "ResourceLeak"
	KindCollectionInefficiency  Kind = "CollectionInefficiency"
	KindScatteredType           Kind = "ScatteredType"
	KindOrphanedFunctions       Kind = "OrphanedFunctions"
	KindUtilitiesSprawl         Kind = "UtilitiesSprawl"
)

// AllKinds lists every discriminant.
var AllKinds = []Kind{
	KindTodo, KindFixme, KindCodeSmell, KindComplexity, KindDependency,
	KindResourceManagement, KindCodeOrganization, KindTestComplexity,
	KindTestQuality, KindTestingGap, KindComplexityHotspot, KindDeadCode,
	KindDuplication, KindRisk, KindTestComplexityHotspot, KindTestTodo,
	KindTestDuplication, KindErrorSwallowing, KindAllocationInefficiency,
	KindStringConcatenation, KindNestedLoops, KindBlockingIO,
	KindSuboptimalDataStructure, KindGodObject, KindGodModule,
	KindFeatureEnvy, KindPrimitiveObsession, KindMagicValues,
	KindAssertionComplexity, KindFlakyTestPattern, KindAsyncMisuse,
	KindResourceLeak, KindCollectionInefficiency, KindScatteredType,
	KindOrphanedFunctions, KindUtilitiesSprawl,
}

// DebtType is one concrete debt classification with its evidence.
type DebtType interface {
	Kind() Kind
	sealed()
}

// TestingGap is complex code with little or no effective coverage.
type TestingGap struct {
	Coverage   float64 `json:"coverage"`
	Cyclomatic int     `json:"cyclomatic"`
	Cognitive  int     `json:"cognitive"`
}

// ComplexityHotspot is code whose complexity alone warrants attention.
type ComplexityHotspot struct {
	Cyclomatic int `json:"cyclomatic"`
	Cognitive  int `json:"cognitive"`
}

// DeadCode is a function nothing in the analyzed code calls.
type DeadCode struct {
	Visibility string   `json:"visibility"`
	Cyclomatic int      `json:"cyclomatic"`
	Cognitive  int      `json:"cognitive"`
	UsageHints []string `json:"usage_hints"`
}

// Duplication is a body repeated elsewhere.
type Duplication struct {
	Instances  int `json:"instances"`
	TotalLines int `json:"total_lines"`
}

// Risk is the fallback classification carrying the contributing factors.
type Risk struct {
	RiskScore float64  `json:"risk_score"`
	Factors   []string `json:"factors"`
}

// GodObject is a type with too many methods or responsibilities.
type GodObject struct {
	TypeName         string  `json:"type_name"`
	Methods          int     `json:"methods"`
	Fields           *int    `json:"fields"`
	Responsibilities int     `json:"responsibilities"`
	GodScore         float64 `json:"god_score"`
	Lines            int     `json:"lines"`
}

// GodModule is a file with too many functions or lines.
type GodModule struct {
	Functions        int     `json:"functions"`
	Lines            int     `json:"lines"`
	Responsibilities int     `json:"responsibilities"`
	GodScore         float64 `json:"god_score"`
}

// ErrorSwallowing is an error that is discarded or ignored.
type ErrorSwallowing struct {
	Pattern string `json:"pattern"`
	Context string `json:"context"`
}

// Todo is a TODO marker in production code.
type Todo struct {
	Text string `json:"text"`
}

// Fixme is a FIXME marker.
type Fixme struct {
	Text string `json:"text"`
}

// CodeSmell is a named smell without a dedicated variant.
type CodeSmell struct {
	Smell string `json:"smell"`
}

// Complexity is a legacy complexity finding.
type Complexity struct {
	Cyclomatic int `json:"cyclomatic"`
	Cognitive  int `json:"cognitive"`
}

// Dependency is excessive coupling.
type Dependency struct {
	Upstream   int `json:"upstream"`
	Downstream int `json:"downstream"`
}

// ResourceManagement is a general resource handling issue.
type ResourceManagement struct {
	Issue string `json:"issue"`
}

// CodeOrganization is a structural issue without a dedicated variant.
type CodeOrganization struct {
	Issue string `json:"issue"`
}

// TestComplexity is an overly complex test.
type TestComplexity struct {
	Cyclomatic int `json:"cyclomatic"`
	Cognitive  int `json:"cognitive"`
}

// TestQuality is a general test quality issue.
type TestQuality struct {
	Issue string `json:"issue"`
}

// TestComplexityHotspot is a test above the complexity threshold.
type TestComplexityHotspot struct {
	Cyclomatic int `json:"cyclomatic"`
	Cognitive  int `json:"cognitive"`
	Threshold  int `json:"threshold"`
}

// TestTodo is a TODO marker inside test code.
type TestTodo struct {
	Text string `json:"text"`
}

// TestDuplication is a repeated test body.
type TestDuplication struct {
	Instances  int     `json:"instances"`
	TotalLines int     `json:"total_lines"`
	Similarity float64 `json:"similarity"`
}

// AllocationInefficiency is avoidable allocation.
type AllocationInefficiency struct {
	Pattern string `json:"pattern"`
	Impact  string `json:"impact"`
}

// StringConcatenation is repeated string building inside loops.
type StringConcatenation struct {
	Loops int `json:"loops"`
}

// NestedLoops is loop nesting at or beyond the configured depth.
type NestedLoops struct {
	Depth int `json:"depth"`
}

// BlockingIO is a blocking call inside a loop.
type BlockingIO struct {
	Operation string `json:"operation"`
	Context   string `json:"context"`
}

// SuboptimalDataStructure is a data structure mismatched to its use.
type SuboptimalDataStructure struct {
	Current     string `json:"current"`
	Recommended string `json:"recommended"`
}

// FeatureEnvy is a method mostly using another type's data.
type FeatureEnvy struct {
	ExternalType string `json:"external_type"`
	Usages       int    `json:"usages"`
}

// PrimitiveObsession is a primitive standing in for a domain type.
type PrimitiveObsession struct {
	PrimitiveType string `json:"primitive_type"`
	DomainConcept string `json:"domain_concept"`
}

// MagicValues is unexplained literal usage.
type MagicValues struct {
	Value       string `json:"value"`
	Occurrences int    `json:"occurrences"`
}

// AssertionComplexity is a test with convoluted assertions.
type AssertionComplexity struct {
	Assertions int `json:"assertions"`
	Cyclomatic int `json:"cyclomatic"`
}

// FlakyTestPattern is a test relying on timing or ordering.
type FlakyTestPattern struct {
	Pattern string `json:"pattern"`
	Reason  string `json:"reason"`
}

// AsyncMisuse is concurrency used without coordination.
type AsyncMisuse struct {
	Pattern string `json:"pattern"`
	Impact  string `json:"impact"`
}

// ResourceLeak is a resource opened without a matching release.
type ResourceLeak struct {
	Resource string `json:"resource"`
	Cleanup  string `json:"cleanup"`
}

// CollectionInefficiency is a wasteful collection operation.
type CollectionInefficiency struct {
	Operation  string `json:"operation"`
	Suggestion string `json:"suggestion"`
}

// ScatteredType is a type whose methods are spread over many files.
type ScatteredType struct {
	TypeName string `json:"type_name"`
	Files    int    `json:"files"`
	Methods  int    `json:"methods"`
}

// OrphanedFunctions are free functions that belong on a type.
type OrphanedFunctions struct {
	TargetType string `json:"target_type"`
	Functions  int    `json:"functions"`
}

// UtilitiesSprawl is a catch-all utility file.
type UtilitiesSprawl struct {
	Functions     int `json:"functions"`
	DistinctTypes int `json:"distinct_types"`
}

func (TestingGap) Kind() Kind              { return KindTestingGap }
func (ComplexityHotspot) Kind() Kind       { return KindComplexityHotspot }
func (DeadCode) Kind() Kind                { return KindDeadCode }
func (Duplication) Kind() Kind             { return KindDuplication }
func (Risk) Kind() Kind                    { return KindRisk }
func (GodObject) Kind() Kind               { return KindGodObject }
func (GodModule) Kind() Kind               { return KindGodModule }
func (ErrorSwallowing) Kind() Kind         { return KindErrorSwallowing }
func (Todo) Kind() Kind                    { return KindTodo }
func (Fixme) Kind() Kind                   { return KindFixme }
func (CodeSmell) Kind() Kind               { return KindCodeSmell }
func (Complexity) Kind() Kind              { return KindComplexity }
func (Dependency) Kind() Kind              { return KindDependency }
func (ResourceManagement) Kind() Kind      { return KindResourceManagement }
func (CodeOrganization) Kind() Kind        { return KindCodeOrganization }
func (TestComplexity) Kind() Kind          { return KindTestComplexity }
func (TestQuality) Kind() Kind             { return KindTestQuality }
func (TestComplexityHotspot) Kind() Kind   { return KindTestComplexityHotspot }
func (TestTodo) Kind() Kind                { return KindTestTodo }
func (TestDuplication) Kind() Kind         { return KindTestDuplication }
func (AllocationInefficiency) Kind() Kind  { return KindAllocationInefficiency }
func (StringConcatenation) Kind() Kind     { return KindStringConcatenation }
func (NestedLoops) Kind() Kind             { return KindNestedLoops }
func (BlockingIO) Kind() Kind              { return KindBlockingIO }
func (SuboptimalDataStructure) Kind() Kind { return KindSuboptimalDataStructure }
func (FeatureEnvy) Kind() Kind             { return KindFeatureEnvy }
func (PrimitiveObsession) Kind() Kind      { return KindPrimitiveObsession }
func (MagicValues) Kind() Kind             { return KindMagicValues }
func (AssertionComplexity) Kind() Kind     { return KindAssertionComplexity }
func (FlakyTestPattern) Kind() Kind        { return KindFlakyTestPattern }
func (AsyncMisuse) Kind() Kind             { return KindAsyncMisuse }
func (ResourceLeak) Kind() Kind            { return KindResourceLeak }
func (CollectionInefficiency) Kind() Kind  { return KindCollectionInefficiency }
func (ScatteredType) Kind() Kind           { return KindScatteredType }
func (OrphanedFunctions) Kind() Kind       { return KindOrphanedFunctions }
func (UtilitiesSprawl) Kind() Kind         { return KindUtilitiesSprawl }

func (TestingGap) sealed()              {}
func (ComplexityHotspot) sealed()       {}
func (DeadCode) sealed()                {}
func (Duplication) sealed()             {}
func (Risk) sealed()                    {}
func (GodObject) sealed()               {}
func (GodModule) sealed()               {}
func (ErrorSwallowing) sealed()         {}
func (Todo) sealed()                    {}
func (Fixme) sealed()                   {}
func (CodeSmell) sealed()               {}
func (Complexity) sealed()              {}
func (Dependency) sealed()              {}
func (ResourceManagement) sealed()      {}
func (CodeOrganization) sealed()        {}
func (TestComplexity) sealed()          {}
func (TestQuality) sealed()             {}
func (TestComplexityHotspot) sealed()   {}
func (TestTodo) sealed()                {}
func (TestDuplication) sealed()         {}
func (AllocationInefficiency) sealed()  {}
func (StringConcatenation) sealed()     {}
func (NestedLoops) sealed()             {}
func (BlockingIO) sealed()              {}
func (SuboptimalDataStructure) sealed() {}
func (FeatureEnvy) sealed()             {}
func (PrimitiveObsession) sealed()      {}
func (MagicValues) sealed()             {}
func (AssertionComplexity) sealed()     {}
func (FlakyTestPattern) sealed()        {}
func (AsyncMisuse) sealed()             {}
func (ResourceLeak) sealed()            {}
func (CollectionInefficiency) sealed()  {}
func (ScatteredType) sealed()           {}
func (OrphanedFunctions) sealed()       {}
func (UtilitiesSprawl) sealed()         {}

// Same reports whether a and b share a discriminant. Evidence is
// ignored, so two hotspots with different complexity are the same.
func Same(a, b DebtType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind()
}
