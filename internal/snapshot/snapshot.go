// Package snapshot defines the immutable input handed from a collector
// to the prioritization engine: per-function metrics, per-file
// aggregates, the call graph, and optional coverage.
package snapshot

import (
	"sort"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/coverage"
)

// Visibility describes how widely a function can be referenced.
type Visibility string

// Visibility constants.
const (
	Exported   Visibility = "exported"
	Unexported Visibility = "unexported"
)

// FunctionMetrics holds raw measurements for one function.
type FunctionMetrics struct {
	ID         callgraph.FunctionID `json:"id"`
	Package    string               `json:"package"`
	Receiver   string               `json:"receiver,omitempty"`
	Cyclomatic int                  `json:"cyclomatic"`
	Cognitive  int                  `json:"cognitive"`
	Nesting    int                  `json:"nesting"`
	Length     int                  `json:"length"`
	Visibility Visibility           `json:"visibility"`
	IsTest     bool                 `json:"is_test"`

	// IsClosure marks function literals, which are never dead code.
	IsClosure bool `json:"is_closure,omitempty"`

	// IsPure is a purity hint from the collector; nil when unknown.
	IsPure *bool `json:"is_pure,omitempty"`

	Signals Signals `json:"signals"`
}

// Name returns the function name.
func (m FunctionMetrics) Name() string { return m.ID.Name }

// File returns the source file path.
func (m FunctionMetrics) File() string { return m.ID.File }

// Line returns the declaration line.
func (m FunctionMetrics) Line() int { return m.ID.Line }

// Signals are pattern observations from the collector. They drive
// orthogonal debt items and recommendation text.
type Signals struct {
	Markers           []Marker         `json:"markers,omitempty"`
	SwallowedErrors   []PatternHit     `json:"swallowed_errors,omitempty"`
	MaxLoopDepth      int              `json:"max_loop_depth,omitempty"`
	StringConcatLoops int              `json:"string_concat_loops,omitempty"`
	BlockingInLoop    []PatternHit     `json:"blocking_in_loop,omitempty"`
	UnclosedResources []PatternHit     `json:"unclosed_resources,omitempty"`
	UnsyncedGoroutine []PatternHit     `json:"unsynced_goroutines,omitempty"`
	Duplicate         *DuplicateSignal `json:"duplicate,omitempty"`
	MagicNumbers      int              `json:"magic_numbers,omitempty"`
}

// MarkerKind is a comment annotation such as TODO or FIXME.
type MarkerKind string

// Marker kinds.
const (
	MarkerTodo  MarkerKind = "TODO"
	MarkerFixme MarkerKind = "FIXME"
)

// Marker is a TODO/FIXME comment found inside a function.
type Marker struct {
	Kind MarkerKind `json:"kind"`
	Line int        `json:"line"`
	Text string     `json:"text"`
}

// PatternHit is a single occurrence of a code pattern.
type PatternHit struct {
	Pattern string `json:"pattern"`
	Context string `json:"context,omitempty"`
	Line    int    `json:"line"`
}

// DuplicateSignal reports structurally identical function bodies.
type DuplicateSignal struct {
	Instances  int `json:"instances"`
	TotalLines int `json:"total_lines"`
}

// TypeMetrics aggregates the methods declared on one named type.
type TypeMetrics struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Methods int    `json:"methods"`

	// Fields is nil when the type is not a struct or its field count
	// could not be determined.
	Fields *int `json:"fields,omitempty"`

	// Responsibilities counts distinct method-name verb groups.
	Responsibilities int `json:"responsibilities"`
}

// FileMetrics aggregates one source file.
type FileMetrics struct {
	Path      string        `json:"path"`
	Package   string        `json:"package"`
	Lines     int           `json:"lines"`
	Functions int           `json:"functions"`
	Types     []TypeMetrics `json:"types,omitempty"`
	IsTest    bool          `json:"is_test"`
}

// Snapshot is the complete, frozen input of one analysis run.
type Snapshot struct {
	Graph     *callgraph.Graph
	Functions []FunctionMetrics
	Files     []FileMetrics

	// Coverage is nil when no coverage data was supplied.
	Coverage *coverage.Index
}

// New returns a snapshot with functions and files in deterministic
// order. The slices are copied.
func New(g *callgraph.Graph, funcs []FunctionMetrics, files []FileMetrics, cov *coverage.Index) *Snapshot {
	fs := make([]FunctionMetrics, len(funcs))
	copy(fs, funcs)
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].ID.Less(fs[j].ID) })

	fl := make([]FileMetrics, len(files))
	copy(fl, files)
	sort.SliceStable(fl, func(i, j int) bool { return fl[i].Path < fl[j].Path })

	if g == nil {
		g = callgraph.NewBuilder().Build()
	}
	return &Snapshot{Graph: g, Functions: fs, Files: fl, Coverage: cov}
}
