package collect

import (
	"go/ast"
	"go/token"
)

// cognitive computes the cognitive complexity of a function body and
// the deepest nesting of control structures in it.
//
// Control structures add one plus their nesting depth. else and
// else-if branches, labelled jumps, goto, and each run of like
// boolean operators add one. Function literals deepen nesting without
// adding to the score.
func cognitive(body *ast.BlockStmt) (score, maxNesting int) {
	if body == nil {
		return 0, 0
	}
	w := &cogWalker{}
	w.walk(body, 0)
	return w.score, w.maxNesting
}

type cogWalker struct {
	score      int
	maxNesting int
}

func (w *cogWalker) structure(nesting int) {
	w.score += 1 + nesting
}

func (w *cogWalker) walk(n ast.Node, nesting int) {
	if n == nil {
		return
	}
	w.maxNesting = max(w.maxNesting, nesting)

	ast.Inspect(n, func(node ast.Node) bool {
		switch x := node.(type) {
		case *ast.IfStmt:
			w.ifStmt(x, nesting, false)
			return false
		case *ast.ForStmt:
			w.structure(nesting)
			w.walkStmt(x.Init, nesting)
			w.walkExpr(x.Cond, nesting)
			w.walkStmt(x.Post, nesting)
			w.walk(x.Body, nesting+1)
			return false
		case *ast.RangeStmt:
			w.structure(nesting)
			w.walkExpr(x.X, nesting)
			w.walk(x.Body, nesting+1)
			return false
		case *ast.SwitchStmt:
			w.structure(nesting)
			w.walkStmt(x.Init, nesting)
			w.walkExpr(x.Tag, nesting)
			w.walk(x.Body, nesting+1)
			return false
		case *ast.TypeSwitchStmt:
			w.structure(nesting)
			w.walkStmt(x.Init, nesting)
			w.walk(x.Body, nesting+1)
			return false
		case *ast.SelectStmt:
			w.structure(nesting)
			w.walk(x.Body, nesting+1)
			return false
		case *ast.FuncLit:
			w.walk(x.Body, nesting+1)
			return false
		case *ast.BranchStmt:
			if x.Tok == token.GOTO || x.Label != nil {
				w.score++
			}
		case *ast.BinaryExpr:
			if x.Op == token.LAND || x.Op == token.LOR {
				w.logical(x, nesting)
				return false
			}
		}
		return true
	})
}

func (w *cogWalker) walkStmt(s ast.Stmt, nesting int) {
	if s != nil {
		w.walk(s, nesting)
	}
}

func (w *cogWalker) walkExpr(e ast.Expr, nesting int) {
	if e != nil {
		w.walk(e, nesting)
	}
}

func (w *cogWalker) ifStmt(x *ast.IfStmt, nesting int, elseIf bool) {
	if elseIf {
		w.score++
	} else {
		w.structure(nesting)
	}
	w.walkStmt(x.Init, nesting)
	w.walkExpr(x.Cond, nesting)
	w.walk(x.Body, nesting+1)

	switch e := x.Else.(type) {
	case *ast.IfStmt:
		w.ifStmt(e, nesting, true)
	case *ast.BlockStmt:
		w.score++
		w.walk(e, nesting+1)
	}
}

// logical scores a tree of && and || operators: one for the first run
// and one more each time the operator changes.
func (w *cogWalker) logical(e *ast.BinaryExpr, nesting int) {
	var ops []token.Token
	var operands []ast.Expr
	var flatten func(ast.Expr)
	flatten = func(x ast.Expr) {
		if p, ok := x.(*ast.ParenExpr); ok {
			x = p.X
		}
		if b, ok := x.(*ast.BinaryExpr); ok && (b.Op == token.LAND || b.Op == token.LOR) {
			flatten(b.X)
			ops = append(ops, b.Op)
			flatten(b.Y)
			return
		}
		operands = append(operands, x)
	}
	flatten(e)

	w.score++
	for i := 1; i < len(ops); i++ {
		if ops[i] != ops[i-1] {
			w.score++
		}
	}
	for _, o := range operands {
		w.walk(o, nesting)
	}
}
