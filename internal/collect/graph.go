package collect

import (
	"go/token"
	"strings"

	xcallgraph "golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// graphInput is what the per-file pass hands to the call graph pass.
type graphInput struct {
	funcs []snapshot.FunctionMetrics

	// decls maps the SSA position of each analyzed function to its ID.
	decls map[token.Pos]callgraph.FunctionID

	// forwards marks functions whose body only returns another call;
	// their outgoing edges are Delegate or Pipeline.
	forwards map[callgraph.FunctionID]callgraph.CallKind
}

// buildGraph builds SSA for pkgs, computes a class hierarchy call graph
// and projects it onto the analyzed functions. Calls into code outside
// the analyzed files are dropped.
func buildGraph(pkgs []*packages.Package, in graphInput) *callgraph.Graph {
	b := callgraph.NewBuilder()
	for _, m := range in.funcs {
		b.AddFunction(callgraph.Node{
			ID:           m.ID,
			IsEntryPoint: isEntryPoint(m),
			IsTest:       m.IsTest,
			Cyclomatic:   m.Cyclomatic,
			Length:       m.Length,
		})
	}

	prog, _ := ssautil.Packages(pkgs, ssa.InstantiateGenerics)
	prog.Build()
	cg := cha.CallGraph(prog)

	idOf := func(fn *ssa.Function) (callgraph.FunctionID, bool) {
		if fn == nil {
			return callgraph.FunctionID{}, false
		}
		if o := fn.Origin(); o != nil {
			fn = o
		}
		if fn.Synthetic != "" {
			// Bound method closures, method expression thunks and
			// promotion wrappers stand for the declared method.
			obj := fn.Object()
			if obj == nil {
				return callgraph.FunctionID{}, false
			}
			id, ok := in.decls[obj.Pos()]
			return id, ok
		}
		id, ok := in.decls[fn.Pos()]
		return id, ok
	}

	seen := make(map[callgraph.CallEdge]bool)
	add := func(caller, callee callgraph.FunctionID, kind callgraph.CallKind) {
		e := callgraph.CallEdge{Caller: caller, Callee: callee, Kind: kind}
		if caller == callee || seen[e] {
			return
		}
		seen[e] = true
		b.AddCall(caller, callee, kind)
	}

	_ = xcallgraph.GraphVisitEdges(cg, func(e *xcallgraph.Edge) error {
		caller, ok := idOf(e.Caller.Func)
		if !ok {
			return nil
		}
		callee, ok := idOf(e.Callee.Func)
		if !ok {
			return nil
		}
		add(caller, callee, edgeKind(e.Site, in.forwards[caller]))
		return nil
	})

	// Function values handed to another call are callbacks of the
	// function that hands them over.
	for fn := range cg.Nodes {
		caller, ok := idOf(fn)
		if !ok {
			continue
		}
		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instrs {
				call, ok := instr.(ssa.CallInstruction)
				if !ok {
					continue
				}
				for _, arg := range call.Common().Args {
					if callee, ok := idOf(funcValue(arg)); ok {
						add(caller, callee, callgraph.Callback)
					}
				}
			}
		}
	}
	return b.Build()
}

func edgeKind(site ssa.CallInstruction, forward callgraph.CallKind) callgraph.CallKind {
	if _, ok := site.(*ssa.Go); ok {
		return callgraph.Async
	}
	if forward.IsDelegation() {
		return forward
	}
	return callgraph.Direct
}

func funcValue(v ssa.Value) *ssa.Function {
	switch x := v.(type) {
	case *ssa.Function:
		return x
	case *ssa.MakeClosure:
		fn, _ := x.Fn.(*ssa.Function)
		return fn
	}
	return nil
}

var testEntryPrefixes = []string{"Test", "Benchmark", "Fuzz", "Example"}

func isEntryPoint(m snapshot.FunctionMetrics) bool {
	name := m.ID.Name
	if m.Receiver == "" && (name == "init" || (name == "main" && m.Package == "main")) {
		return true
	}
	if !m.IsTest || m.Receiver != "" || m.IsClosure {
		return false
	}
	for _, p := range testEntryPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
