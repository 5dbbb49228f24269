package collect

import (
	"fmt"
	"go/ast"
	"go/token"
)

// fnNode is a function declaration or a function literal.
type fnNode struct {
	name string
	recv string
	decl *ast.FuncDecl
	lit  *ast.FuncLit
}

func (n fnNode) node() ast.Node {
	if n.decl != nil {
		return n.decl
	}
	return n.lit
}

func (n fnNode) body() *ast.BlockStmt {
	if n.decl != nil {
		return n.decl.Body
	}
	return n.lit.Body
}

func (n fnNode) closure() bool { return n.lit != nil }

// ssaPos is the position go/ssa reports for the function: the name of
// a declaration or the func keyword of a literal.
func (n fnNode) ssaPos() token.Pos {
	if n.decl != nil {
		return n.decl.Name.Pos()
	}
	return n.lit.Type.Func
}

// eachFunc calls visit for every function with a body in f, in source
// order. Literals are named after their enclosing function with a "$n"
// suffix, counted per enclosing function.
func eachFunc(f *ast.File, visit func(fnNode)) {
	for _, d := range f.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		n := fnNode{name: funcName(fd), decl: fd}
		if fd.Recv != nil && fd.Recv.NumFields() > 0 {
			n.recv = recvTypeString(fd.Recv.List[0].Type)
		}
		visit(n)
		eachLit(fd.Body, n.name, visit)
	}
}

func eachLit(body ast.Node, parent string, visit func(fnNode)) {
	count := 0
	ast.Inspect(body, func(x ast.Node) bool {
		lit, ok := x.(*ast.FuncLit)
		if !ok {
			return true
		}
		count++
		name := fmt.Sprintf("%s$%d", parent, count)
		visit(fnNode{name: name, lit: lit})
		eachLit(lit.Body, name, visit)
		return false
	})
}

// funcName returns "Name" or "(*Recv).Name".
func funcName(fd *ast.FuncDecl) string {
	if fd.Recv != nil && fd.Recv.NumFields() > 0 {
		return "(" + recvTypeString(fd.Recv.List[0].Type) + ")." + fd.Name.Name
	}
	return fd.Name.Name
}

// recvTypeString extracts the receiver type as a string.
func recvTypeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "*" + recvTypeString(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.ParenExpr:
		return recvTypeString(t.X)
	case *ast.IndexExpr:
		return recvTypeString(t.X) + "[" + recvTypeString(t.Index) + "]"
	case *ast.IndexListExpr:
		s := recvTypeString(t.X) + "["
		for i, idx := range t.Indices {
			if i > 0 {
				s += ","
			}
			s += recvTypeString(idx)
		}
		return s + "]"
	default:
		return "?"
	}
}

// baseType strips pointers and type parameters from a receiver.
func baseType(recv string) string {
	for len(recv) > 0 && recv[0] == '*' {
		recv = recv[1:]
	}
	for i, r := range recv {
		if r == '[' {
			return recv[:i]
		}
	}
	return recv
}
