package collect

import (
	"go/ast"
	"go/token"
	"go/types"
	"hash/fnv"
	"reflect"
	"strings"
	"unicode"

	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/go/packages"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// minDuplicateLines is the shortest body considered for duplication.
const minDuplicateLines = 6

// sourceFile is one file selected for analysis.
type sourceFile struct {
	pkg  *packages.Package
	file *ast.File
	rel  string
	test bool
}

// fileResult is everything the per-file pass learns about one file.
type fileResult struct {
	metrics  snapshot.FileMetrics
	funcs    []snapshot.FunctionMetrics
	decls    map[token.Pos]callgraph.FunctionID
	forwards map[callgraph.FunctionID]callgraph.CallKind

	// methods maps a receiver base type to the names of its methods.
	methods map[string][]string

	// shapes maps a function to the structural hash of its body.
	shapes map[callgraph.FunctionID]uint64
}

// analyzeFile measures every function and type in one file. It only
// reads shared state and is safe to run concurrently.
func analyzeFile(src sourceFile) fileResult {
	fset := src.pkg.Fset
	tf := fset.File(src.file.Pos())

	res := fileResult{
		metrics: snapshot.FileMetrics{
			Path:    src.rel,
			Package: src.pkg.Name,
			IsTest:  src.test,
		},
		decls:    make(map[token.Pos]callgraph.FunctionID),
		forwards: make(map[callgraph.FunctionID]callgraph.CallKind),
		methods:  make(map[string][]string),
		shapes:   make(map[callgraph.FunctionID]uint64),
	}
	if tf != nil {
		res.metrics.Lines = tf.LineCount()
	}

	eachFunc(src.file, func(n fnNode) {
		m := measure(src, n)
		res.funcs = append(res.funcs, m)
		res.decls[n.ssaPos()] = m.ID
		if k, ok := forwardKind(n.body()); ok {
			res.forwards[m.ID] = k
		}
		if !n.closure() {
			res.metrics.Functions++
			if n.recv != "" {
				base := baseType(n.recv)
				res.methods[base] = append(res.methods[base], n.decl.Name.Name)
			}
		}
		if m.Length >= minDuplicateLines {
			res.shapes[m.ID] = shapeHash(n.body())
		}
	})

	res.metrics.Types = declaredTypes(fset, src.file)
	return res
}

func measure(src sourceFile, n fnNode) snapshot.FunctionMetrics {
	fset := src.pkg.Fset
	node := n.node()
	start := fset.Position(node.Pos())
	end := fset.Position(node.End())

	cog, nesting := cognitive(n.body())
	m := snapshot.FunctionMetrics{
		ID:         callgraph.FunctionID{File: src.rel, Name: n.name, Line: start.Line},
		Package:    src.pkg.Name,
		Receiver:   n.recv,
		Cyclomatic: gocyclo.Complexity(node),
		Cognitive:  cog,
		Nesting:    nesting,
		Length:     end.Line - start.Line + 1,
		Visibility: snapshot.Unexported,
		IsTest:     src.test,
		IsClosure:  n.closure(),
		Signals:    scanSignals(fset, src.pkg.TypesInfo, n.body()),
	}
	if n.decl != nil {
		if ast.IsExported(n.decl.Name.Name) {
			m.Visibility = snapshot.Exported
		}
		// Closures share their parent's comments.
		m.Signals.Markers = markers(fset, src.file.Comments, node.Pos(), node.End())
	}
	if pure, ok := purity(src.pkg.TypesInfo, n); ok {
		m.IsPure = &pure
	}
	return m
}

// purity is a cheap hint: a plain function that calls nothing and
// touches no package state is pure. Anything else is unknown.
func purity(info *types.Info, n fnNode) (bool, bool) {
	if n.recv != "" || n.closure() {
		return false, false
	}
	pure := true
	ast.Inspect(n.body(), func(x ast.Node) bool {
		switch v := x.(type) {
		case *ast.CallExpr:
			if tv, ok := info.Types[v.Fun]; !ok || !tv.IsType() {
				pure = false
			}
		case *ast.GoStmt, *ast.SendStmt:
			pure = false
		case *ast.UnaryExpr:
			if v.Op == token.ARROW {
				pure = false
			}
		case *ast.Ident:
			if obj, ok := info.Uses[v].(*types.Var); ok && obj.Pkg() != nil && obj.Parent() == obj.Pkg().Scope() {
				pure = false
			}
		}
		return pure
	})
	if !pure {
		return false, false
	}
	return true, true
}

// forwardKind reports whether body is a single return of a call. A
// chain of method calls is a pipeline; anything else is a delegation.
func forwardKind(body *ast.BlockStmt) (callgraph.CallKind, bool) {
	if body == nil || len(body.List) != 1 {
		return callgraph.Direct, false
	}
	var call *ast.CallExpr
	switch s := body.List[0].(type) {
	case *ast.ReturnStmt:
		if len(s.Results) != 1 {
			return callgraph.Direct, false
		}
		call, _ = ast.Unparen(s.Results[0]).(*ast.CallExpr)
	case *ast.ExprStmt:
		call, _ = s.X.(*ast.CallExpr)
	}
	if call == nil {
		return callgraph.Direct, false
	}
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
		if _, chained := sel.X.(*ast.CallExpr); chained {
			return callgraph.Pipeline, true
		}
	}
	return callgraph.Delegate, true
}

// shapeHash hashes the node types of a body, ignoring names and
// literal values, so renamed copies hash alike.
func shapeHash(body *ast.BlockStmt) uint64 {
	h := fnv.New64a()
	ast.Inspect(body, func(x ast.Node) bool {
		if x == nil {
			_, _ = h.Write([]byte{')'})
			return true
		}
		_, _ = h.Write([]byte(reflect.TypeOf(x).String()))
		switch v := x.(type) {
		case *ast.BinaryExpr:
			_, _ = h.Write([]byte(v.Op.String()))
		case *ast.AssignStmt:
			_, _ = h.Write([]byte(v.Tok.String()))
		}
		return true
	})
	return h.Sum64()
}

// declaredTypes lists the named types declared in f. Method counts are
// filled in once every file of the package has been seen.
func declaredTypes(fset *token.FileSet, f *ast.File) []snapshot.TypeMetrics {
	var out []snapshot.TypeMetrics
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			tm := snapshot.TypeMetrics{Name: ts.Name.Name, Line: fset.Position(ts.Pos()).Line}
			if st, ok := ts.Type.(*ast.StructType); ok {
				n := 0
				for _, field := range st.Fields.List {
					if len(field.Names) == 0 {
						n++
					}
					n += len(field.Names)
				}
				tm.Fields = &n
			}
			out = append(out, tm)
		}
	}
	return out
}

// responsibilities counts the distinct leading verbs of method names,
// e.g. Get, Set and Load in GetUser, SetUser, LoadConfig.
func responsibilities(methods []string) int {
	verbs := make(map[string]bool)
	for _, m := range methods {
		verbs[leadingWord(m)] = true
	}
	return len(verbs)
}

func leadingWord(name string) string {
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			return strings.ToLower(name[:i])
		}
	}
	return strings.ToLower(name)
}
