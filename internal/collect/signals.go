package collect

import (
	"go/ast"
	"go/token"
	"go/types"
	"regexp"
	"sort"
	"strings"

	"github.com/unbound-force/debtmap/internal/snapshot"
)

var errorType = types.Universe.Lookup("error").Type()

// markerRegexp matches TODO and FIXME annotations in comments.
var markerRegexp = regexp.MustCompile(`\b(TODO|FIXME)\b[:(]?\s*(.*)`)

// blockingCalls are package functions that block the calling goroutine
// on I/O or time.
var blockingCalls = map[string]map[string]bool{
	"time":     {"Sleep": true},
	"net/http": {"Get": true, "Post": true, "Head": true},
	"os":       {"ReadFile": true, "WriteFile": true},
	"net":      {"Dial": true, "DialTimeout": true},
}

// resourceOpeners are package functions whose first result must be
// closed.
var resourceOpeners = map[string]map[string]bool{
	"os":       {"Open": true, "Create": true, "OpenFile": true},
	"net":      {"Dial": true, "DialTimeout": true, "Listen": true},
	"net/http": {"Get": true, "Post": true, "Head": true},
}

// benignNumbers are literals that are never reported as magic.
var benignNumbers = map[string]bool{
	"0": true, "1": true, "2": true, "-1": true, "0.0": true, "1.0": true, "10": true, "100": true,
}

// signalScanner detects code patterns in one function body. Nested
// function literals are skipped; they are scanned on their own.
type signalScanner struct {
	fset *token.FileSet
	info *types.Info
	out  snapshot.Signals

	opened  map[types.Object]snapshot.PatternHit
	escaped map[types.Object]bool
	waits   bool
	gos     []snapshot.PatternHit
}

func scanSignals(fset *token.FileSet, info *types.Info, body *ast.BlockStmt) snapshot.Signals {
	s := &signalScanner{
		fset:    fset,
		info:    info,
		opened:  make(map[types.Object]snapshot.PatternHit),
		escaped: make(map[types.Object]bool),
	}
	if body == nil {
		return s.out
	}
	s.scan(body)

	for obj, hit := range s.opened {
		if !s.escaped[obj] {
			s.out.UnclosedResources = append(s.out.UnclosedResources, hit)
		}
	}
	sortHits(s.out.UnclosedResources)
	if !s.waits {
		s.out.UnsyncedGoroutine = s.gos
	}
	return s.out
}

func (s *signalScanner) line(p token.Pos) int { return s.fset.Position(p).Line }

func (s *signalScanner) scan(body *ast.BlockStmt) {
	var stack []ast.Node
	loops := 0

	ast.Inspect(body, func(n ast.Node) bool {
		if n == nil {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if isLoop(top) {
				loops--
			}
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok && len(stack) > 0 {
			return false
		}
		stack = append(stack, n)
		if isLoop(n) {
			loops++
			s.out.MaxLoopDepth = max(s.out.MaxLoopDepth, loops)
		}

		switch x := n.(type) {
		case *ast.AssignStmt:
			s.assign(x, loops > 0)
		case *ast.IfStmt:
			s.emptyErrCheck(x)
		case *ast.CallExpr:
			s.call(x, loops > 0)
		case *ast.GoStmt:
			if loops > 0 {
				s.gos = append(s.gos, snapshot.PatternHit{
					Pattern: "goroutine started in loop",
					Context: exprString(x.Call.Fun),
					Line:    s.line(x.Pos()),
				})
			}
		case *ast.ReturnStmt:
			for _, r := range x.Results {
				s.escape(r)
			}
		case *ast.BasicLit:
			if (x.Kind == token.INT || x.Kind == token.FLOAT) && !benignNumbers[x.Value] {
				s.out.MagicNumbers++
			}
		case *ast.GenDecl:
			// Constant declarations give numbers a name.
			if x.Tok == token.CONST {
				stack = stack[:len(stack)-1]
				return false
			}
		}
		return true
	})
}

func isLoop(n ast.Node) bool {
	switch n.(type) {
	case *ast.ForStmt, *ast.RangeStmt:
		return true
	}
	return false
}

func (s *signalScanner) assign(x *ast.AssignStmt, inLoop bool) {
	if inLoop && x.Tok == token.ADD_ASSIGN && len(x.Lhs) == 1 {
		if t := s.info.TypeOf(x.Lhs[0]); t != nil {
			if b, ok := t.Underlying().(*types.Basic); ok && b.Info()&types.IsString != 0 {
				s.out.StringConcatLoops++
			}
		}
	}

	if len(x.Rhs) != 1 {
		return
	}
	call, ok := x.Rhs[0].(*ast.CallExpr)
	if !ok {
		return
	}

	// _ = f() or v, _ := f() where the blank takes an error.
	results := s.resultTypes(call)
	if len(results) == len(x.Lhs) {
		for i, lhs := range x.Lhs {
			if isBlank(lhs) && types.Identical(results[i], errorType) {
				s.out.SwallowedErrors = append(s.out.SwallowedErrors, snapshot.PatternHit{
					Pattern: "discarded error",
					Context: exprString(call.Fun) + "()",
					Line:    s.line(x.Pos()),
				})
				break
			}
		}
	}

	if pkg, name, ok := s.pkgFunc(call); ok && resourceOpeners[pkg][name] && len(x.Lhs) > 0 {
		if id, ok := x.Lhs[0].(*ast.Ident); ok && !isBlank(id) {
			if obj := s.info.ObjectOf(id); obj != nil {
				s.opened[obj] = snapshot.PatternHit{
					Pattern: pkg + "." + name,
					Context: id.Name,
					Line:    s.line(x.Pos()),
				}
			}
		}
	}
}

// emptyErrCheck reports "if err != nil {}" with an empty body.
func (s *signalScanner) emptyErrCheck(x *ast.IfStmt) {
	if len(x.Body.List) > 0 || x.Else != nil {
		return
	}
	cond, ok := x.Cond.(*ast.BinaryExpr)
	if !ok || cond.Op != token.NEQ || !isNil(cond.Y) {
		return
	}
	if t := s.info.TypeOf(cond.X); t == nil || !types.Identical(t, errorType) {
		return
	}
	s.out.SwallowedErrors = append(s.out.SwallowedErrors, snapshot.PatternHit{
		Pattern: "empty error check",
		Context: "if " + exprString(cond.X) + " != nil {}",
		Line:    s.line(x.Pos()),
	})
}

func (s *signalScanner) call(x *ast.CallExpr, inLoop bool) {
	if sel, ok := x.Fun.(*ast.SelectorExpr); ok {
		switch sel.Sel.Name {
		case "Close":
			s.escape(sel.X)
		case "Wait":
			s.waits = true
		}
	}
	for _, a := range x.Args {
		s.escape(a)
	}
	if !inLoop {
		return
	}
	if pkg, name, ok := s.pkgFunc(x); ok && blockingCalls[pkg][name] {
		s.out.BlockingInLoop = append(s.out.BlockingInLoop, snapshot.PatternHit{
			Pattern: pkg + "." + name,
			Context: "inside loop",
			Line:    s.line(x.Pos()),
		})
	}
}

// escape marks a resource as handled when it is closed, returned, or
// passed on to other code.
func (s *signalScanner) escape(e ast.Expr) {
	if id, ok := ast.Unparen(e).(*ast.Ident); ok {
		if obj := s.info.ObjectOf(id); obj != nil {
			s.escaped[obj] = true
		}
	}
}

func (s *signalScanner) pkgFunc(call *ast.CallExpr) (pkg, name string, ok bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	fn, ok := s.info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return "", "", false
	}
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		return "", "", false
	}
	return fn.Pkg().Path(), fn.Name(), true
}

func (s *signalScanner) resultTypes(call *ast.CallExpr) []types.Type {
	t := s.info.TypeOf(call)
	if t == nil {
		return nil
	}
	if tuple, ok := t.(*types.Tuple); ok {
		out := make([]types.Type, tuple.Len())
		for i := range out {
			out[i] = tuple.At(i).Type()
		}
		return out
	}
	return []types.Type{t}
}

func sortHits(hits []snapshot.PatternHit) {
	sort.Slice(hits, func(i, j int) bool { return hits[i].Line < hits[j].Line })
}

func isBlank(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "_"
}

func isNil(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "nil"
}

// exprString renders short expressions such as "f", "pkg.F", or
// "x.y.Method" for pattern context.
func exprString(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.SelectorExpr:
		return exprString(x.X) + "." + x.Sel.Name
	case *ast.CallExpr:
		return exprString(x.Fun) + "()"
	case *ast.StarExpr:
		return "*" + exprString(x.X)
	case *ast.ParenExpr:
		return exprString(x.X)
	case *ast.IndexExpr:
		return exprString(x.X) + "[...]"
	case *ast.FuncLit:
		return "func literal"
	default:
		return "expr"
	}
}

// markers returns the TODO and FIXME comments between from and to.
func markers(fset *token.FileSet, comments []*ast.CommentGroup, from, to token.Pos) []snapshot.Marker {
	var out []snapshot.Marker
	for _, cg := range comments {
		if cg.End() < from || cg.Pos() > to {
			continue
		}
		for _, c := range cg.List {
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"))
			m := markerRegexp.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			kind := snapshot.MarkerTodo
			if m[1] == "FIXME" {
				kind = snapshot.MarkerFixme
			}
			out = append(out, snapshot.Marker{
				Kind: kind,
				Line: fset.Position(c.Pos()).Line,
				Text: strings.TrimSpace(strings.TrimSuffix(m[2], "*/")),
			})
		}
	}
	return out
}
