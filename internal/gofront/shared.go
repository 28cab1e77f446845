package gofront

import (
	"go/ast"
	"go/token"
	"go/types"
)

// sharedVars collects local variables of the body that can be changed behind the
// function's back: variables whose address is taken, explicitly or by calls of
// pointer methods on addressable values, and variables captured by function literals.
func sharedVars(info *types.Info, body *ast.BlockStmt) map[types.Object]struct{} {
	res := map[types.Object]struct{}{}

	mark := func(e ast.Expr) {
		if obj := addressRoot(info, e); obj != nil {
			res[obj] = struct{}{}
		}
	}

	ast.Inspect(body, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.UnaryExpr:
			if v.Op == token.AND {
				mark(v.X)
			}

		case *ast.SelectorExpr:
			if pointerMethodOfValue(info, v) {
				mark(v.X)
			}

		case *ast.FuncLit:
			for obj := range captured(info, v) {
				res[obj] = struct{}{}
			}
		}

		return true
	})

	return res
}

// addressRoot returns the local variable whose storage e is a part of.
func addressRoot(info *types.Info, e ast.Expr) types.Object {
	for {
		switch v := e.(type) {
		case *ast.ParenExpr:
			e = v.X

		case *ast.SelectorExpr:
			sel := info.Selections[v]
			if sel == nil || sel.Kind() != types.FieldVal || sel.Indirect() || isPointer(info.TypeOf(v.X)) {
				return nil
			}
			e = v.X

		case *ast.IndexExpr:
			if _, ok := underlying(info.TypeOf(v.X)).(*types.Array); !ok {
				return nil
			}
			e = v.X

		case *ast.Ident:
			return localVar(info.ObjectOf(v))

		default:
			return nil
		}
	}
}

// pointerMethodOfValue reports whether the selector is a method with a pointer receiver
// selected on a value: the value is addressed implicitly.
func pointerMethodOfValue(info *types.Info, v *ast.SelectorExpr) bool {
	sel := info.Selections[v]
	if sel == nil || sel.Kind() != types.MethodVal || isPointer(info.TypeOf(v.X)) {
		return false
	}

	sig, ok := sel.Obj().Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return false
	}

	return isPointer(sig.Recv().Type())
}

// captured returns local variables declared outside of the literal it refers to.
func captured(info *types.Info, lit *ast.FuncLit) map[types.Object]struct{} {
	res := map[types.Object]struct{}{}
	ast.Inspect(lit.Body, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}

		obj := localVar(info.Uses[id])
		if obj == nil {
			return true
		}
		if obj.Pos() < lit.Pos() || obj.Pos() >= lit.End() {
			res[obj] = struct{}{}
		}
		return true
	})

	return res
}

func localVar(obj types.Object) types.Object {
	v, ok := obj.(*types.Var)
	if !ok || v.IsField() {
		return nil
	}
	if v.Pkg() != nil && v.Parent() == v.Pkg().Scope() {
		return nil
	}

	return v
}
