// Package callgraph stores function identities and call relationships
// for one analysis run. A Graph is assembled by a Builder and is
// read-only once built.
package callgraph

import (
	"fmt"
	"sort"
)

// FunctionID identifies a function by file, name, and start line.
// It is comparable and safe to use as a map key.
type FunctionID struct {
	File string `json:"file"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// String returns "file:line name".
func (id FunctionID) String() string {
	return fmt.Sprintf("%s:%d %s", id.File, id.Line, id.Name)
}

// Less orders IDs by file, then line, then name.
func (id FunctionID) Less(other FunctionID) bool {
	if id.File != other.File {
		return id.File < other.File
	}
	if id.Line != other.Line {
		return id.Line < other.Line
	}
	return id.Name < other.Name
}

// CallKind distinguishes ordinary calls from delegation-style calls.
type CallKind int

// Call kinds.
const (
	Direct CallKind = iota
	Delegate
	Pipeline
	Async
	Callback
)

var callKindNames = map[CallKind]string{
	Direct:   "direct",
	Delegate: "delegate",
	Pipeline: "pipeline",
	Async:    "async",
	Callback: "callback",
}

// String returns the lowercase kind name.
func (k CallKind) String() string {
	if name, ok := callKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsDelegation reports whether the call forwards work rather than
// doing it locally.
func (k CallKind) IsDelegation() bool {
	return k == Delegate || k == Pipeline
}

// CallEdge is a single caller to callee relationship.
type CallEdge struct {
	Caller FunctionID `json:"caller"`
	Callee FunctionID `json:"callee"`
	Kind   CallKind   `json:"kind"`
}

// Node holds per-function facts the graph queries depend on.
type Node struct {
	ID           FunctionID
	IsEntryPoint bool
	IsTest       bool
	Cyclomatic   int
	Length       int
}

// Graph is an immutable call graph. The zero value is an empty graph.
type Graph struct {
	nodes   map[FunctionID]Node
	callees map[FunctionID][]FunctionID
	callers map[FunctionID][]FunctionID
	edges   map[FunctionID][]CallEdge
	order   []FunctionID
}

// Len returns the number of known functions.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Node returns the node for id and whether it exists.
func (g *Graph) Node(id FunctionID) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// Functions returns all known function IDs in deterministic order.
func (g *Graph) Functions() []FunctionID {
	if g == nil {
		return nil
	}
	out := make([]FunctionID, len(g.order))
	copy(out, g.order)
	return out
}

// CalleesOf returns the distinct functions id calls, sorted.
func (g *Graph) CalleesOf(id FunctionID) []FunctionID {
	if g == nil {
		return nil
	}
	return clone(g.callees[id])
}

// CallersOf returns the distinct functions that call id, sorted.
func (g *Graph) CallersOf(id FunctionID) []FunctionID {
	if g == nil {
		return nil
	}
	return clone(g.callers[id])
}

// EdgesFrom returns the outgoing edges of id in insertion order.
func (g *Graph) EdgesFrom(id FunctionID) []CallEdge {
	if g == nil {
		return nil
	}
	out := make([]CallEdge, len(g.edges[id]))
	copy(out, g.edges[id])
	return out
}

// IsEntryPoint reports whether id was tagged as an entry point.
func (g *Graph) IsEntryPoint(id FunctionID) bool {
	n, ok := g.Node(id)
	return ok && n.IsEntryPoint
}

// IsTest reports whether id was tagged as a test function.
func (g *Graph) IsTest(id FunctionID) bool {
	n, ok := g.Node(id)
	return ok && n.IsTest
}

// IsTestHelper reports whether id has callers and all of them are tests.
func (g *Graph) IsTestHelper(id FunctionID) bool {
	callers := g.CallersOf(id)
	if len(callers) == 0 {
		return false
	}
	for _, c := range callers {
		if !g.IsTest(c) {
			return false
		}
	}
	return true
}

// EntryReach is how many caller hops from an entry point still raise
// Criticality.
const EntryReach = 3

// Criticality is a multiplicative score derived from entry-point
// distance, fan-in and fan-out. The minimum is 1.0.
func (g *Graph) Criticality(id FunctionID) float64 {
	criticality := 1.0
	switch d, ok := g.EntryDistance(id, EntryReach); {
	case !ok:
	case d == 0:
		criticality *= 2.0
	case d == 1:
		criticality *= 1.3
	default:
		criticality *= 1.1
	}

	switch callers := len(g.CallersOf(id)); {
	case callers > 5:
		criticality *= 1.5
	case callers > 2:
		criticality *= 1.2
	}

	if len(g.CalleesOf(id)) > 5 {
		criticality *= 1.1
	}
	return criticality
}

// EntryDistance returns the number of caller hops from id to the
// nearest entry point, searching at most maxDepth hops. An entry point
// is at distance 0.
func (g *Graph) EntryDistance(id FunctionID, maxDepth int) (int, bool) {
	if g.IsEntryPoint(id) {
		return 0, true
	}
	visited := map[FunctionID]bool{id: true}
	frontier := []FunctionID{id}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []FunctionID
		for _, cur := range frontier {
			for _, c := range g.CallersOf(cur) {
				if visited[c] {
					continue
				}
				if g.IsEntryPoint(c) {
					return depth, true
				}
				visited[c] = true
				next = append(next, c)
			}
		}
		frontier = next
	}
	return 0, false
}

// DetectDelegation reports whether id has an orchestration shape: low
// local complexity, at least two callees, and calls that mostly
// forward to more complex code.
func (g *Graph) DetectDelegation(id FunctionID) bool {
	n, ok := g.Node(id)
	if !ok || n.Cyclomatic > 3 {
		return false
	}
	callees := g.CalleesOf(id)
	if len(callees) < 2 {
		return false
	}
	if g.DelegationRatio(id) >= 0.8 {
		return true
	}

	var total float64
	for _, c := range callees {
		if cn, ok := g.Node(c); ok {
			total += float64(cn.Cyclomatic)
		}
	}
	avg := total / float64(len(callees))
	return avg > float64(n.Cyclomatic)*2
}

// DelegationRatio is the share of outgoing edges tagged as delegation.
// It is 0 when id has no outgoing edges.
func (g *Graph) DelegationRatio(id FunctionID) float64 {
	edges := g.EdgesFrom(id)
	if len(edges) == 0 {
		return 0
	}
	delegated := 0
	for _, e := range edges {
		if e.Kind.IsDelegation() {
			delegated++
		}
	}
	return float64(delegated) / float64(len(edges))
}

func clone(ids []FunctionID) []FunctionID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]FunctionID, len(ids))
	copy(out, ids)
	return out
}

func sortIDs(ids []FunctionID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
